package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pyrite-check/pyrite/internal/config"
)

// Type is the interface for all type terms. Terms are immutable values;
// two terms are the same type exactly when their String forms coincide,
// which makes String the canonical (and injective) representation.
type Type interface {
	String() string
	Instantiate(Subst) Type
	FreeVariables() []Variable
}

// BottomType is the uninhabited type, below every other type.
type BottomType struct{}

// TopType sits above every type, including Any.
type TopType struct{}

// AnyType is the gradual unknown: every type fits below it, but it fits
// below nothing except itself and Top.
type AnyType struct{}

// UndeclaredType marks names whose annotation was never established.
type UndeclaredType struct{}

var (
	Bottom     Type = BottomType{}
	Top        Type = TopType{}
	Any        Type = AnyType{}
	Undeclared Type = UndeclaredType{}
)

func (BottomType) String() string     { return "$bottom" }
func (TopType) String() string        { return "$unknown" }
func (AnyType) String() string        { return config.TypingAnyName }
func (UndeclaredType) String() string { return config.TypingUndeclaredName }

func (t BottomType) Instantiate(Subst) Type     { return t }
func (t TopType) Instantiate(Subst) Type        { return t }
func (t AnyType) Instantiate(Subst) Type        { return t }
func (t UndeclaredType) Instantiate(Subst) Type { return t }

func (BottomType) FreeVariables() []Variable     { return nil }
func (TopType) FreeVariables() []Variable        { return nil }
func (AnyType) FreeVariables() []Variable        { return nil }
func (UndeclaredType) FreeVariables() []Variable { return nil }

// Primitive is a nominal class identified by its canonical dotted name.
type Primitive struct {
	Name string
}

func (t Primitive) String() string            { return t.Name }
func (t Primitive) Instantiate(Subst) Type    { return t }
func (t Primitive) FreeVariables() []Variable { return nil }

// Parametric is a primitive applied to a fixed-length parameter list,
// e.g. list[int].
type Parametric struct {
	Name       string
	Parameters []Type
}

func (t Parametric) String() string {
	return fmt.Sprintf("%s[%s]", t.Name, joinTypes(t.Parameters, ", "))
}

func (t Parametric) Instantiate(s Subst) Type {
	return Parametric{Name: t.Name, Parameters: instantiateAll(t.Parameters, s)}
}

func (t Parametric) FreeVariables() []Variable { return freeInAll(t.Parameters) }

// Variance declares how substitution through a variable interacts with the
// subtype relation.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "+"
	case Contravariant:
		return "-"
	default:
		return "="
	}
}

// Constraints restricts the types a Variable may take.
type Constraints interface {
	constraintsString() string
	instantiate(Subst) Constraints
}

// Unconstrained places no restriction on the variable.
type Unconstrained struct{}

// Bound restricts the variable to subtypes of Upper.
type Bound struct {
	Upper Type
}

// Explicit restricts the variable to an enumerated set of types.
type Explicit struct {
	Types []Type
}

func (Unconstrained) constraintsString() string { return "" }
func (c Bound) constraintsString() string       { return " <: " + c.Upper.String() }
func (c Explicit) constraintsString() string {
	return " in (" + joinTypes(c.Types, ", ") + ")"
}

func (c Unconstrained) instantiate(Subst) Constraints { return c }
func (c Bound) instantiate(s Subst) Constraints       { return Bound{Upper: c.Upper.Instantiate(s)} }
func (c Explicit) instantiate(s Subst) Constraints {
	return Explicit{Types: instantiateAll(c.Types, s)}
}

// Variable is a type variable with optional constraints and a declared
// variance. A variable marked simulated-bound is hidden from FreeVariables
// while a signature simulation is in flight.
type Variable struct {
	Name           string
	Constraints    Constraints
	Variance       Variance
	SimulatedBound bool
}

func (t Variable) String() string {
	constraints := ""
	if t.Constraints != nil {
		constraints = t.Constraints.constraintsString()
	}
	return fmt.Sprintf("Variable[%s%s%s]", t.Variance, t.Name, constraints)
}

func (t Variable) Instantiate(s Subst) Type {
	if replacement, ok := s[t.Name]; ok {
		return replacement
	}
	if t.Constraints != nil {
		t.Constraints = t.Constraints.instantiate(s)
	}
	return t
}

func (t Variable) FreeVariables() []Variable {
	if t.SimulatedBound {
		return nil
	}
	return []Variable{t}
}

// IsUnconstrained reports whether the variable carries no bound and no
// explicit constraint set.
func (t Variable) IsUnconstrained() bool {
	if t.Constraints == nil {
		return true
	}
	_, ok := t.Constraints.(Unconstrained)
	return ok
}

// Ground reduces the variable to the type it ranges over: the union of
// explicit constraints, the declared bound, or object when unconstrained.
func (t Variable) Ground() Type {
	switch c := t.Constraints.(type) {
	case Bound:
		return c.Upper
	case Explicit:
		return NewUnion(c.Types...)
	default:
		return Primitive{Name: config.ObjectName}
	}
}

// Optional admits the inner type or None.
type Optional struct {
	Inner Type
}

func (t Optional) String() string {
	return fmt.Sprintf("%s[%s]", config.TypingOptionalName, t.Inner)
}

func (t Optional) Instantiate(s Subst) Type {
	return Optional{Inner: t.Inner.Instantiate(s)}
}

func (t Optional) FreeVariables() []Variable { return t.Inner.FreeVariables() }

// Union is a set-like sum of alternatives. Build unions through NewUnion so
// they stay flattened, duplicate-free, and sorted.
type Union struct {
	Alternatives []Type
}

func (t Union) String() string {
	return fmt.Sprintf("%s[%s]", config.TypingUnionName, joinTypes(t.Alternatives, ", "))
}

func (t Union) Instantiate(s Subst) Type {
	return NewUnion(instantiateAll(t.Alternatives, s)...)
}

func (t Union) FreeVariables() []Variable { return freeInAll(t.Alternatives) }

// NewUnion creates a normalized union: nested unions are flattened,
// duplicates removed, alternatives sorted. One alternative collapses to the
// type itself; zero to Bottom.
func NewUnion(types ...Type) Type {
	flat := []Type{}
	for _, t := range types {
		if u, ok := t.(Union); ok {
			flat = append(flat, u.Alternatives...)
		} else {
			flat = append(flat, t)
		}
	}

	seen := make(map[string]bool)
	unique := []Type{}
	for _, t := range flat {
		s := t.String()
		if !seen[s] {
			seen[s] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 0 {
		return Bottom
	}
	if len(unique) == 1 {
		return unique[0]
	}

	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})
	return Union{Alternatives: unique}
}

// Meta is the type of the type object of Inner, i.e. type[Inner].
type Meta struct {
	Inner Type
}

func (t Meta) String() string {
	return fmt.Sprintf("%s[%s]", config.TypeName, t.Inner)
}

func (t Meta) Instantiate(s Subst) Type { return Meta{Inner: t.Inner.Instantiate(s)} }

func (t Meta) FreeVariables() []Variable { return t.Inner.FreeVariables() }

// SingleParameter returns the instance type a meta type constructs.
func (t Meta) SingleParameter() Type { return t.Inner }

// IsMeta reports whether t is a type-object type.
func IsMeta(t Type) bool {
	_, ok := t.(Meta)
	return ok
}

func joinTypes(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func instantiateAll(types []Type, s Subst) []Type {
	result := make([]Type, len(types))
	for i, t := range types {
		result[i] = t.Instantiate(s)
	}
	return result
}

func freeInAll(types []Type) []Variable {
	vars := []Variable{}
	for _, t := range types {
		vars = append(vars, t.FreeVariables()...)
	}
	return uniqueVariables(vars)
}

func uniqueVariables(vars []Variable) []Variable {
	unique := []Variable{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}

// Equal reports whether two terms denote the same type.
func Equal(left, right Type) bool {
	return left.String() == right.String()
}
