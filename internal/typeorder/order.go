package typeorder

import (
	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Witness is the result of asking the host whether a candidate structurally
// implements a protocol.
type Witness struct {
	Implements bool
	Parameters []typesystem.Type
}

// DoesNotImplement is the negative witness.
var DoesNotImplement = Witness{}

// Implements builds a positive witness carrying the protocol parameters the
// candidate fixes.
func Implements(parameters ...typesystem.Type) Witness {
	return Witness{Implements: true, Parameters: parameters}
}

// ConstructorCallback maps a metaclass type to the instance type its call
// produces, when the host knows one.
type ConstructorCallback func(typesystem.Type) (typesystem.Type, bool)

// ImplementsCallback witnesses structural protocol membership.
type ImplementsCallback func(protocol, candidate typesystem.Type) Witness

// Order bundles an engine handle with the two host callbacks. Every query
// recursion point receives the same Order value, which keeps the mutual
// recursion between subtyping, the lattice, signature simulation, and
// constraint solving in one place.
type Order struct {
	Engine      *Engine
	Constructor ConstructorCallback
	Implements  ImplementsCallback
}

func (o *Order) constructor(annotation typesystem.Type) (typesystem.Type, bool) {
	if o.Constructor == nil {
		return nil, false
	}
	return o.Constructor(annotation)
}

func (o *Order) implements(protocol, candidate typesystem.Type) Witness {
	if o.Implements == nil {
		return DoesNotImplement
	}
	return o.Implements(protocol, candidate)
}

// Variables returns the declared type variables of the annotation's
// primitive, read off its edge to the Generic vertex. `type` and
// `typing.Callable` are generic in a single covariant parameter regardless of
// graph content. The second result is false when the class declares no
// variables; an untracked primitive is an error.
func (e *Engine) Variables(annotation typesystem.Type) (variables []typesystem.Type, found bool, err error) {
	defer recoverUntracked(&err)
	variables, found = e.variables(annotation)
	return variables, found, nil
}

func (e *Engine) variables(annotation typesystem.Type) ([]typesystem.Type, bool) {
	name, ok := typesystem.PrimitiveName(annotation)
	if !ok {
		return nil, false
	}
	if name == config.TypeName || name == config.TypingCallableName {
		return []typesystem.Type{
			typesystem.Variable{Name: config.MetaVariableName, Variance: typesystem.Covariant},
		}, true
	}

	index, ok := e.IndexOf(typesystem.Primitive{Name: name})
	if !ok {
		raiseUntracked(annotation)
	}
	genericIndex, ok := e.IndexOf(typesystem.Primitive{Name: config.TypingGenericName})
	if !ok {
		return nil, false
	}
	for _, target := range e.edges(index) {
		if target.Target == genericIndex && len(target.Parameters) > 0 {
			return target.Parameters, true
		}
	}
	return nil, false
}
