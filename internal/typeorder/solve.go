package typeorder

import (
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// ConstraintSet accumulates solved bindings from type variable names to
// concrete types.
type ConstraintSet map[string]typesystem.Type

func (c ConstraintSet) clone() ConstraintSet {
	cloned := make(ConstraintSet, len(c))
	for name, annotation := range c {
		cloned[name] = annotation
	}
	return cloned
}

// substitution converts the set into a substitution for instantiating
// annotations.
func (c ConstraintSet) substitution() typesystem.Subst {
	substitution := typesystem.Subst{}
	for name, annotation := range c {
		substitution[name] = annotation
	}
	return substitution
}

// SolveConstraints extends the constraint set so that source becomes a
// subtype of the instantiated target. The second result is false when no
// extension works; untracked primitives also read as no solution.
func (o *Order) SolveConstraints(constraints ConstraintSet, source, target typesystem.Type) (ConstraintSet, bool) {
	solved, ok, err := o.solveConstraintsChecked(constraints, source, target)
	if err != nil {
		o.Engine.logger.Debug("solve: untracked type, no solution",
			"source", source.String(), "target", target.String())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return solved, true
}

func (o *Order) solveConstraintsChecked(constraints ConstraintSet, source, target typesystem.Type) (solved ConstraintSet, ok bool, err error) {
	defer recoverUntracked(&err)
	solved, ok = o.solveConstraints(constraints.clone(), source, target)
	return solved, ok, nil
}

func (o *Order) solveConstraints(constraints ConstraintSet, source, target typesystem.Type) (ConstraintSet, bool) {
	// Bottom fits below anything and binds nothing.
	if typesystem.Equal(source, typesystem.Bottom) {
		return constraints, true
	}

	// A union source must solve branch by branch against the same target.
	if union, ok := source.(typesystem.Union); ok {
		for _, branch := range union.Alternatives {
			var solved bool
			constraints, solved = o.solveConstraints(constraints, branch, target)
			if !solved {
				return constraints, false
			}
		}
		return constraints, true
	}

	if typesystem.IsInstantiated(target) {
		// Fully resolved target: the source just has to fit below it. The
		// gradual corner where either side is Any is tolerated.
		if typesystem.Equal(source, typesystem.Any) || typesystem.Equal(target, typesystem.Any) ||
			typesystem.Equal(target, typesystem.Top) {
			return constraints, true
		}
		return constraints, o.lessOrEqual(source, target)
	}

	switch target := target.(type) {
	case typesystem.Variable:
		return o.solveAgainstVariable(constraints, source, target)

	case typesystem.Parametric:
		if callable, ok := source.(typesystem.Callable); ok {
			witness := o.implements(typesystem.Primitive{Name: target.Name}, callable)
			if !witness.Implements {
				return constraints, false
			}
			return o.solveConstraints(constraints,
				typesystem.Parametric{Name: target.Name, Parameters: witness.Parameters}, target)
		}

		parameters, found := o.instantiateSuccessorsParameters(source, typesystem.Primitive{Name: target.Name})
		if !found || len(parameters) != len(target.Parameters) {
			return constraints, false
		}
		for i := range parameters {
			var solved bool
			constraints, solved = o.solveConstraints(constraints, parameters[i], target.Parameters[i])
			if !solved {
				return constraints, false
			}
		}
		instantiated := target.Instantiate(constraints.substitution())
		return constraints, o.lessOrEqual(source, instantiated)

	case typesystem.Optional:
		if optional, ok := source.(typesystem.Optional); ok {
			return o.solveConstraints(constraints, optional.Inner, target.Inner)
		}
		return o.solveConstraints(constraints, source, target.Inner)

	case typesystem.Tuple:
		return o.solveTuple(constraints, source, target)

	case typesystem.Union:
		for _, branch := range target.Alternatives {
			if solved, ok := o.solveConstraints(constraints.clone(), source, branch); ok {
				return solved, true
			}
		}
		return constraints, false

	case typesystem.Callable:
		return o.solveCallable(constraints, source, target)

	case typesystem.Meta:
		if meta, ok := source.(typesystem.Meta); ok {
			return o.solveConstraints(constraints, meta.Inner, target.Inner)
		}
		return constraints, false

	default:
		return constraints, false
	}
}

// solveAgainstVariable joins the source onto whatever the variable has
// already collected and accepts the result when the variable's own
// constraints allow it.
func (o *Order) solveAgainstVariable(constraints ConstraintSet, source typesystem.Type, target typesystem.Variable) (ConstraintSet, bool) {
	if sourceVariable, ok := source.(typesystem.Variable); ok && sourceVariable.Name == target.Name {
		return constraints, true
	}

	joinedSource := source
	if existing, ok := constraints[target.Name]; ok {
		joinedSource = o.join(existing, source)
	}

	switch targetConstraints := target.Constraints.(type) {
	case typesystem.Explicit:
		if sourceVariable, ok := source.(typesystem.Variable); ok {
			if sourceConstraints, ok := sourceVariable.Constraints.(typesystem.Explicit); ok {
				// Both sides explicit: the source's choices must all be
				// admissible for the target.
				for _, choice := range sourceConstraints.Types {
					if !containsType(targetConstraints.Types, choice) {
						return constraints, false
					}
				}
				constraints[target.Name] = joinedSource
				return constraints, true
			}
		}
		for _, choice := range targetConstraints.Types {
			if o.lessOrEqual(joinedSource, choice) {
				constraints[target.Name] = choice
				return constraints, true
			}
		}
		return constraints, false
	case typesystem.Bound:
		if !o.lessOrEqual(joinedSource, targetConstraints.Upper) {
			return constraints, false
		}
		constraints[target.Name] = joinedSource
		return constraints, true
	default:
		constraints[target.Name] = joinedSource
		return constraints, true
	}
}

func (o *Order) solveTuple(constraints ConstraintSet, source typesystem.Type, target typesystem.Tuple) (ConstraintSet, bool) {
	tuple, ok := source.(typesystem.Tuple)
	if !ok {
		return constraints, false
	}
	switch {
	case !tuple.Unbounded && !target.Unbounded:
		if len(tuple.Elements) != len(target.Elements) {
			return constraints, false
		}
		for i := range tuple.Elements {
			var solved bool
			constraints, solved = o.solveConstraints(constraints, tuple.Elements[i], target.Elements[i])
			if !solved {
				return constraints, false
			}
		}
		return constraints, true
	case tuple.Unbounded && target.Unbounded:
		return o.solveConstraints(constraints, tuple.Element(), target.Element())
	case !tuple.Unbounded:
		// Bounded against unbounded: every element solves the element type.
		for _, element := range tuple.Elements {
			var solved bool
			constraints, solved = o.solveConstraints(constraints, element, target.Element())
			if !solved {
				return constraints, false
			}
		}
		return constraints, true
	default:
		// Unbounded against bounded: the element solves each position.
		for _, element := range target.Elements {
			var solved bool
			constraints, solved = o.solveConstraints(constraints, tuple.Element(), element)
			if !solved {
				return constraints, false
			}
		}
		return constraints, true
	}
}

func (o *Order) solveCallable(constraints ConstraintSet, source typesystem.Type, target typesystem.Callable) (ConstraintSet, bool) {
	switch source := source.(type) {
	case typesystem.Callable:
		// Simulate calling the source the way the target's implementation
		// does, with the target's own variables hidden from the solver.
		marked := typesystem.MarkVariablesAsSimulated(target).(typesystem.Callable)
		if selected, ok := o.simulateSignatureSelect(source, marked.Implementation); ok {
			freed := typesystem.FreeSimulatedVariables(selected.Annotation)
			return o.solveConstraints(constraints, freed, target.Implementation.Annotation)
		}

		// Fallback: line the parameter annotations up pairwise, tolerating
		// length mismatch, then solve the return types.
		if source.Implementation.Defined && target.Implementation.Defined {
			limit := min(len(source.Implementation.Parameters), len(target.Implementation.Parameters))
			for i := 0; i < limit; i++ {
				var solved bool
				constraints, solved = o.solveConstraints(constraints,
					source.Implementation.Parameters[i].ParameterAnnotation(),
					target.Implementation.Parameters[i].ParameterAnnotation())
				if !solved {
					return constraints, false
				}
			}
		}
		return o.solveConstraints(constraints, source.Implementation.Annotation, target.Implementation.Annotation)
	case typesystem.Meta:
		instance, ok := o.constructor(source.SingleParameter())
		if !ok {
			return constraints, false
		}
		return o.solveConstraints(constraints, instance, target)
	default:
		return constraints, false
	}
}

func containsType(types []typesystem.Type, candidate typesystem.Type) bool {
	for _, t := range types {
		if typesystem.Equal(t, candidate) {
			return true
		}
	}
	return false
}
