package typesystem

import (
	"testing"
)

func TestCanonicalStrings(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"Bottom", Bottom, "$bottom"},
		{"Top", Top, "$unknown"},
		{"Any", Any, "typing.Any"},
		{"Undeclared", Undeclared, "typing.Undeclared"},
		{"Primitive", Primitive{Name: "int"}, "int"},
		{
			"Parametric",
			Parametric{Name: "list", Parameters: []Type{Primitive{Name: "int"}}},
			"list[int]",
		},
		{"Optional", Optional{Inner: Primitive{Name: "int"}}, "typing.Optional[int]"},
		{
			"Union",
			NewUnion(Primitive{Name: "int"}, Primitive{Name: "str"}),
			"typing.Union[int, str]",
		},
		{
			"BoundedTuple",
			BoundedTuple(Primitive{Name: "int"}, Primitive{Name: "str"}),
			"typing.Tuple[int, str]",
		},
		{
			"UnboundedTuple",
			UnboundedTuple(Primitive{Name: "int"}),
			"typing.Tuple[int, ...]",
		},
		{"Meta", Meta{Inner: Primitive{Name: "int"}}, "type[int]"},
		{"IntegerLiteral", Literal{Value: IntegerLiteral(7)}, "typing_extensions.Literal[7]"},
		{"StringLiteral", Literal{Value: StringLiteral("a")}, `typing_extensions.Literal["a"]`},
		{"Variable", Variable{Name: "_T", Variance: Covariant}, "Variable[+_T]"},
		{
			"BoundedVariable",
			Variable{Name: "_T", Constraints: Bound{Upper: Primitive{Name: "int"}}},
			"Variable[=_T <: int]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewUnionNormalizes(t *testing.T) {
	intType := Primitive{Name: "int"}
	strType := Primitive{Name: "str"}

	// Nested unions flatten, duplicates collapse, order is canonical.
	union := NewUnion(strType, NewUnion(intType, strType))
	if union.String() != "typing.Union[int, str]" {
		t.Errorf("union = %s", union)
	}

	if single := NewUnion(intType, intType); !Equal(single, intType) {
		t.Errorf("singleton union = %s, want int", single)
	}

	if empty := NewUnion(); !Equal(empty, Bottom) {
		t.Errorf("empty union = %s, want Bottom", empty)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name           string
		typ            Type
		wantPrimitive  string
		wantParameters int
	}{
		{"Parametric", Parametric{Name: "list", Parameters: []Type{Primitive{Name: "int"}}}, "list", 1},
		{"Optional", Optional{Inner: Primitive{Name: "int"}}, "typing.Optional", 1},
		{"BoundedTuple", BoundedTuple(Primitive{Name: "int"}, Primitive{Name: "str"}), "tuple", 2},
		{"UnboundedTuple", UnboundedTuple(Primitive{Name: "int"}), "tuple", 1},
		{"Meta", Meta{Inner: Primitive{Name: "int"}}, "type", 1},
		{"Literal", Literal{Value: IntegerLiteral(3)}, "int", 0},
		{"Primitive", Primitive{Name: "int"}, "int", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primitive, parameters := Split(tt.typ)
			if primitive.String() != tt.wantPrimitive {
				t.Errorf("primitive = %s, want %s", primitive, tt.wantPrimitive)
			}
			if len(parameters) != tt.wantParameters {
				t.Errorf("parameters = %d, want %d", len(parameters), tt.wantParameters)
			}
		})
	}
}

func TestWeakenLiterals(t *testing.T) {
	literal := Literal{Value: IntegerLiteral(3)}
	weakened := WeakenLiterals(Parametric{Name: "list", Parameters: []Type{literal}})
	if weakened.String() != "list[int]" {
		t.Errorf("weakened = %s", weakened)
	}

	tuple := WeakenLiterals(BoundedTuple(Literal{Value: StringLiteral("x")}, Primitive{Name: "int"}))
	if tuple.String() != "typing.Tuple[str, int]" {
		t.Errorf("weakened tuple = %s", tuple)
	}
}

func TestInstantiate(t *testing.T) {
	variable := Variable{Name: "_T"}
	listOfT := Parametric{Name: "list", Parameters: []Type{variable}}

	instantiated := listOfT.Instantiate(Subst{"_T": Primitive{Name: "int"}})
	if instantiated.String() != "list[int]" {
		t.Errorf("instantiated = %s", instantiated)
	}

	// Unmapped variables survive.
	untouched := listOfT.Instantiate(Subst{"_U": Primitive{Name: "int"}})
	if untouched.String() != listOfT.String() {
		t.Errorf("untouched = %s", untouched)
	}
}

func TestCompose(t *testing.T) {
	first := Subst{"_T": Variable{Name: "_U"}}
	second := Subst{"_U": Primitive{Name: "int"}}
	composed := first.Compose(second)

	result := Variable{Name: "_T"}.Instantiate(composed)
	if result.String() != "int" {
		t.Errorf("composed result = %s", result)
	}
}

func TestFreeVariables(t *testing.T) {
	variable := Variable{Name: "_T"}
	callable := Callable{
		Implementation: Overload{
			Annotation: variable,
			Parameters: []Parameter{NamedParameter{Name: "x", Annotation: variable}},
			Defined:    true,
		},
	}
	if free := callable.FreeVariables(); len(free) != 1 || free[0].Name != "_T" {
		t.Errorf("free = %v", free)
	}

	marked := MarkVariablesAsSimulated(callable)
	if free := marked.FreeVariables(); len(free) != 0 {
		t.Errorf("marked free = %v", free)
	}

	freed := FreeSimulatedVariables(marked)
	if free := freed.FreeVariables(); len(free) != 1 {
		t.Errorf("freed free = %v", free)
	}
}

func TestIsInstantiated(t *testing.T) {
	if IsInstantiated(Parametric{Name: "list", Parameters: []Type{Variable{Name: "_T"}}}) {
		t.Error("list[_T] should not be instantiated")
	}
	if !IsInstantiated(Parametric{Name: "list", Parameters: []Type{Primitive{Name: "int"}}}) {
		t.Error("list[int] should be instantiated")
	}
}

func TestContainsUndeclared(t *testing.T) {
	if !ContainsUndeclared(Optional{Inner: Undeclared}) {
		t.Error("Optional[Undeclared] should contain Undeclared")
	}
	if ContainsUndeclared(Optional{Inner: Primitive{Name: "int"}}) {
		t.Error("Optional[int] should not contain Undeclared")
	}
}
