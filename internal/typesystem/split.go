package typesystem

import "github.com/pyrite-check/pyrite/internal/config"

// Split decomposes a term into the primitive it is an application of and the
// concrete parameter list applied. Scalars split into themselves with no
// parameters.
func Split(t Type) (Type, []Type) {
	switch typ := t.(type) {
	case Parametric:
		return Primitive{Name: typ.Name}, typ.Parameters
	case Optional:
		return Primitive{Name: config.TypingOptionalName}, []Type{typ.Inner}
	case Union:
		return Primitive{Name: config.TypingUnionName}, typ.Alternatives
	case Tuple:
		if typ.Unbounded {
			return Primitive{Name: config.TupleName}, []Type{typ.Element()}
		}
		return Primitive{Name: config.TupleName}, typ.Elements
	case Callable:
		return Primitive{Name: config.TypingCallableName}, nil
	case TypedDictionary:
		return Primitive{Name: typ.PrimitiveName()}, nil
	case Meta:
		return Primitive{Name: config.TypeName}, []Type{typ.Inner}
	case Literal:
		return typ.Carrier(), nil
	default:
		return t, nil
	}
}

// PrimitiveName returns the canonical class name of t's primitive, and
// whether t has one at all (sentinels and bare variables do not).
func PrimitiveName(t Type) (string, bool) {
	switch typ := t.(type) {
	case Primitive:
		return typ.Name, true
	case Parametric:
		return typ.Name, true
	case Optional:
		return config.TypingOptionalName, true
	case Union:
		return config.TypingUnionName, true
	case Tuple:
		return config.TupleName, true
	case Callable:
		return config.TypingCallableName, true
	case TypedDictionary:
		return typ.PrimitiveName(), true
	case Meta:
		return config.TypeName, true
	case Literal:
		return typ.Value.CarrierName(), true
	default:
		return "", false
	}
}

// WeakenLiterals replaces every literal occurring in t by its carrier
// primitive.
func WeakenLiterals(t Type) Type {
	switch typ := t.(type) {
	case Literal:
		return typ.Carrier()
	case Parametric:
		return Parametric{Name: typ.Name, Parameters: weakenAll(typ.Parameters)}
	case Optional:
		return Optional{Inner: WeakenLiterals(typ.Inner)}
	case Union:
		return NewUnion(weakenAll(typ.Alternatives)...)
	case Tuple:
		return Tuple{Elements: weakenAll(typ.Elements), Unbounded: typ.Unbounded}
	case Meta:
		return Meta{Inner: WeakenLiterals(typ.Inner)}
	default:
		return t
	}
}

func weakenAll(types []Type) []Type {
	result := make([]Type, len(types))
	for i, t := range types {
		result[i] = WeakenLiterals(t)
	}
	return result
}

// ContainsUndeclared reports whether Undeclared occurs anywhere in t.
func ContainsUndeclared(t Type) bool {
	if _, ok := t.(UndeclaredType); ok {
		return true
	}
	switch typ := t.(type) {
	case Parametric:
		return anyUndeclared(typ.Parameters)
	case Optional:
		return ContainsUndeclared(typ.Inner)
	case Union:
		return anyUndeclared(typ.Alternatives)
	case Tuple:
		return anyUndeclared(typ.Elements)
	case Meta:
		return ContainsUndeclared(typ.Inner)
	default:
		return false
	}
}

func anyUndeclared(types []Type) bool {
	for _, t := range types {
		if ContainsUndeclared(t) {
			return true
		}
	}
	return false
}

// IsInstantiated reports whether t mentions no free type variables.
func IsInstantiated(t Type) bool {
	return len(t.FreeVariables()) == 0
}
