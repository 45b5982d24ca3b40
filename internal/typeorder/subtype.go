package typeorder

import (
	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// LessOrEqual reports whether left is a subtype of right. Touching a
// primitive the graph does not track is an error; expected negative answers
// are plain false.
func (o *Order) LessOrEqual(left, right typesystem.Type) (result bool, err error) {
	defer recoverUntracked(&err)
	return o.lessOrEqual(left, right), nil
}

// lessOrEqual tries the rules in a fixed order; the first applicable rule
// decides.
func (o *Order) lessOrEqual(left, right typesystem.Type) bool {
	// Equality.
	if typesystem.Equal(left, right) {
		return true
	}

	// Top: everything without Undeclared fits below it; nothing but Top fits
	// above it.
	if typesystem.Equal(right, typesystem.Top) {
		return !typesystem.ContainsUndeclared(left)
	}
	if typesystem.Equal(left, typesystem.Top) {
		return false
	}

	// Any is compatible upward, never downward into a specific type.
	if typesystem.Equal(right, typesystem.Any) {
		return true
	}
	if typesystem.Equal(left, typesystem.Any) {
		return false
	}

	// Bottom.
	if typesystem.Equal(left, typesystem.Bottom) {
		return true
	}
	if typesystem.Equal(right, typesystem.Bottom) {
		return false
	}

	// object is the top of the nominal world.
	if primitive, ok := right.(typesystem.Primitive); ok && primitive.Name == config.ObjectName {
		return true
	}

	// Nothing is below a bare variable.
	if _, ok := right.(typesystem.Variable); ok {
		return false
	}

	// Both parametric.
	if leftParametric, ok := left.(typesystem.Parametric); ok {
		if rightParametric, ok := right.(typesystem.Parametric); ok {
			return o.parametricLessOrEqual(leftParametric, rightParametric)
		}
	}

	// Union on the left: every branch must fit.
	if leftUnion, ok := left.(typesystem.Union); ok {
		for _, branch := range leftUnion.Alternatives {
			if !o.lessOrEqual(branch, right) {
				return false
			}
		}
		return true
	}

	// A constrained variable against a union: some branch accepts it, or the
	// union of its constraints does.
	if leftVariable, ok := left.(typesystem.Variable); ok {
		if rightUnion, ok := right.(typesystem.Union); ok {
			for _, branch := range rightUnion.Alternatives {
				if o.lessOrEqual(leftVariable, branch) {
					return true
				}
			}
			if !leftVariable.IsUnconstrained() {
				return o.lessOrEqual(constraintsBound(leftVariable), right)
			}
			return false
		}
	}

	// Union on the right: some branch accepts.
	if rightUnion, ok := right.(typesystem.Union); ok {
		for _, branch := range rightUnion.Alternatives {
			if o.lessOrEqual(left, branch) {
				return true
			}
		}
		return false
	}

	// Optionals.
	if leftOptional, ok := left.(typesystem.Optional); ok {
		if rightOptional, ok := right.(typesystem.Optional); ok {
			return o.lessOrEqual(leftOptional.Inner, rightOptional.Inner)
		}
		return false
	}
	if rightOptional, ok := right.(typesystem.Optional); ok {
		return o.lessOrEqual(left, rightOptional.Inner)
	}

	// A variable on the left reduces to its constraints.
	if leftVariable, ok := left.(typesystem.Variable); ok {
		if leftVariable.IsUnconstrained() {
			return false
		}
		return o.lessOrEqual(constraintsBound(leftVariable), right)
	}

	// Tuples.
	if leftTuple, ok := left.(typesystem.Tuple); ok {
		return o.tupleLessOrEqual(leftTuple, right)
	}
	if _, ok := right.(typesystem.Tuple); ok {
		// Only tuples fit below a tuple form; tuple-likes were handled above.
		return false
	}

	// Callables.
	if rightCallable, ok := right.(typesystem.Callable); ok {
		switch left := left.(type) {
		case typesystem.Callable:
			return o.callableLessOrEqual(left, rightCallable)
		case typesystem.Meta:
			if instance, ok := o.constructor(left.SingleParameter()); ok {
				return o.lessOrEqual(instance, rightCallable)
			}
			return false
		default:
			return o.joinsToCallable(left, rightCallable)
		}
	}

	// Parametric against primitive and back.
	if leftParametric, ok := left.(typesystem.Parametric); ok {
		if _, ok := right.(typesystem.Primitive); ok {
			return o.lessOrEqual(typesystem.Primitive{Name: leftParametric.Name}, right)
		}
	}
	if leftPrimitive, ok := left.(typesystem.Primitive); ok {
		if rightParametric, ok := right.(typesystem.Parametric); ok {
			return o.parametricLessOrEqual(
				typesystem.Parametric{Name: leftPrimitive.Name}, rightParametric)
		}
	}

	// A callable below a nominal type needs a protocol witness.
	if leftCallable, ok := left.(typesystem.Callable); ok {
		switch right := right.(type) {
		case typesystem.Parametric:
			witness := o.implements(typesystem.Primitive{Name: right.Name}, leftCallable)
			if !witness.Implements {
				return false
			}
			return o.lessOrEqual(
				typesystem.Parametric{Name: right.Name, Parameters: witness.Parameters}, right)
		case typesystem.Primitive:
			witness := o.implements(right, leftCallable)
			return witness.Implements && len(witness.Parameters) == 0
		}
	}

	// Typed dictionaries.
	if leftDictionary, ok := left.(typesystem.TypedDictionary); ok {
		if rightDictionary, ok := right.(typesystem.TypedDictionary); ok {
			return typedDictionaryLessOrEqual(leftDictionary, rightDictionary)
		}
		return o.lessOrEqual(typesystem.Primitive{Name: leftDictionary.PrimitiveName()}, right)
	}
	if rightDictionary, ok := right.(typesystem.TypedDictionary); ok {
		return o.lessOrEqual(left, typesystem.Primitive{Name: rightDictionary.PrimitiveName()})
	}

	// A literal weakens to its carrier; only the literal itself fits below a
	// literal, and equality already handled that.
	if leftLiteral, ok := left.(typesystem.Literal); ok {
		return o.lessOrEqual(leftLiteral.Carrier(), right)
	}
	if _, ok := right.(typesystem.Literal); ok {
		return false
	}

	// Fallback: nominal reachability.
	leftIndex := o.Engine.indexOf(left)
	rightIndex := o.Engine.indexOf(right)
	return o.Engine.reachable(leftIndex, rightIndex)
}

// constraintsBound reduces a constrained variable to the type it ranges
// over: the union of explicit constraints or the declared bound.
func constraintsBound(variable typesystem.Variable) typesystem.Type {
	switch constraints := variable.Constraints.(type) {
	case typesystem.Bound:
		return constraints.Upper
	case typesystem.Explicit:
		return typesystem.NewUnion(constraints.Types...)
	default:
		return typesystem.Bottom
	}
}

func (o *Order) parametricLessOrEqual(left, right typesystem.Parametric) bool {
	if left.Name == right.Name {
		return o.parametersLessOrEqual(typesystem.Primitive{Name: right.Name}, left.Parameters, right.Parameters)
	}

	// Step into immediate superclasses.
	index := o.Engine.indexOf(typesystem.Primitive{Name: left.Name})
	for _, successor := range o.instantiatedSuccessors(step{index: index, parameters: left.Parameters}) {
		annotation := o.stepAnnotation(successor)
		if typesystem.Equal(annotation, typesystem.Top) {
			continue
		}
		if o.lessOrEqual(annotation, right) {
			return true
		}
	}

	// Rewrite left's parameters into right's primitive and compare under
	// right's declared variance.
	if parameters, ok := o.instantiateSuccessorsParameters(left, typesystem.Primitive{Name: right.Name}); ok {
		return o.parametersLessOrEqual(typesystem.Primitive{Name: right.Name}, parameters, right.Parameters)
	}
	return false
}

// parametersLessOrEqual compares two parameter lists componentwise under the
// successor's declared variance.
func (o *Order) parametersLessOrEqual(successor typesystem.Type, left, right []typesystem.Type) bool {
	if len(left) != len(right) {
		return false
	}
	variables, _ := o.Engine.variables(successor)
	for i := range left {
		variance := typesystem.Invariant
		if i < len(variables) {
			if v, ok := variables[i].(typesystem.Variable); ok {
				variance = v.Variance
			}
		}
		switch variance {
		case typesystem.Covariant:
			if !o.lessOrEqual(left[i], right[i]) {
				return false
			}
		case typesystem.Contravariant:
			if !o.lessOrEqual(right[i], left[i]) {
				return false
			}
		default:
			if !o.lessOrEqual(left[i], right[i]) || !o.lessOrEqual(right[i], left[i]) {
				return false
			}
		}
	}
	return true
}

func (o *Order) tupleLessOrEqual(left typesystem.Tuple, right typesystem.Type) bool {
	switch right := right.(type) {
	case typesystem.Tuple:
		switch {
		case !left.Unbounded && !right.Unbounded:
			if len(left.Elements) != len(right.Elements) {
				return false
			}
			for i := range left.Elements {
				if !o.lessOrEqual(left.Elements[i], right.Elements[i]) {
					return false
				}
			}
			return true
		case left.Unbounded && right.Unbounded:
			return o.lessOrEqual(left.Element(), right.Element())
		case !left.Unbounded && right.Unbounded:
			if len(left.Elements) == 0 {
				return true
			}
			return o.lessOrEqual(o.joinAll(left.Elements), right.Element())
		default:
			return false
		}
	case typesystem.Primitive:
		if right.Name == config.TupleName {
			return true
		}
		return o.lessOrEqual(o.tupleAsParametric(left), right)
	default:
		return o.lessOrEqual(o.tupleAsParametric(left), right)
	}
}

// tupleAsParametric views a tuple as tuple[join-of-elements].
func (o *Order) tupleAsParametric(tuple typesystem.Tuple) typesystem.Type {
	element := typesystem.WeakenLiterals(o.joinAll(tuple.Elements))
	return typesystem.Parametric{Name: config.TupleName, Parameters: []typesystem.Type{element}}
}

func (o *Order) joinAll(elements []typesystem.Type) typesystem.Type {
	joined := typesystem.Bottom
	for _, element := range elements {
		joined = o.join(joined, element)
	}
	return joined
}

func (o *Order) callableLessOrEqual(left, right typesystem.Callable) bool {
	if left.Name != "" && left.Name == right.Name {
		return true
	}
	selected, ok := o.simulateSignatureSelect(left, right.Implementation)
	if !ok {
		return false
	}
	return o.lessOrEqual(selected.Annotation, right.Implementation.Annotation)
}

// joinsToCallable checks whether a nominal type is callable by joining it
// with the bottom callable form and comparing the resulting callable.
func (o *Order) joinsToCallable(left typesystem.Type, right typesystem.Callable) bool {
	joined := o.join(left, typesystem.Parametric{
		Name:       config.TypingCallableName,
		Parameters: []typesystem.Type{typesystem.Bottom},
	})
	if parametric, ok := joined.(typesystem.Parametric); ok &&
		parametric.Name == config.TypingCallableName && len(parametric.Parameters) == 1 {
		return o.lessOrEqual(parametric.Parameters[0], right)
	}
	return false
}

func typedDictionaryLessOrEqual(left, right typesystem.TypedDictionary) bool {
	if left.Total != right.Total {
		return false
	}
	for _, field := range right.Fields {
		annotation, ok := left.FieldNamed(field.Name)
		if !ok || !typesystem.Equal(annotation, field.Annotation) {
			return false
		}
	}
	return true
}
