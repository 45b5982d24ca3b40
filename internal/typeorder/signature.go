package typeorder

import (
	"strings"

	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// SimulateSignatureSelect matches a call shaped like calledAs against the
// callable's signatures and returns the first one that accepts it, with its
// annotations instantiated from the solved constraints. The second result is
// false when no signature accepts the call.
func (o *Order) SimulateSignatureSelect(callable typesystem.Callable, calledAs typesystem.Overload) (selected typesystem.Overload, ok bool, err error) {
	defer recoverUntracked(&err)
	selected, ok = o.simulateSignatureSelect(callable, calledAs)
	return selected, ok, nil
}

func (o *Order) simulateSignatureSelect(callable typesystem.Callable, calledAs typesystem.Overload) (typesystem.Overload, bool) {
	for _, signature := range callable.Signatures() {
		constraints := initialConstraints(signature)

		solved := true
		if signature.Defined && calledAs.Defined {
			constraints, solved = o.solveParameters(constraints, signature.Parameters, calledAs.Parameters)
		}
		if !solved {
			continue
		}

		substitution := typesystem.Subst{}
		for name, annotation := range constraints {
			substitution[name] = annotation
		}
		return signature.Instantiate(substitution), true
	}
	return typesystem.Overload{}, false
}

// initialConstraints binds every free variable of a signature to Bottom so
// joins against argument types can only grow them.
func initialConstraints(signature typesystem.Overload) ConstraintSet {
	constraints := ConstraintSet{}
	for _, variable := range signature.FreeVariables() {
		constraints[variable.Name] = typesystem.Bottom
	}
	return constraints
}

// solveParameters walks the implementation parameters (left) against the
// call-site parameters (right) positionally.
func (o *Order) solveParameters(constraints ConstraintSet, left, right []typesystem.Parameter) (ConstraintSet, bool) {
	if len(left) == 0 {
		// Arguments left over with nothing to bind them.
		return constraints, len(right) == 0
	}

	if len(right) == 0 {
		// Remaining formals must all be omissible.
		switch head := left[0].(type) {
		case typesystem.VariableParameter, typesystem.KeywordsParameter:
			return o.solveParameters(constraints, left[1:], right)
		case typesystem.NamedParameter:
			if head.Default {
				return o.solveParameters(constraints, left[1:], right)
			}
			return constraints, false
		default:
			return constraints, false
		}
	}

	// *args together with **kwargs can swallow a run of named call-site
	// parameters, consuming both sides at once.
	if len(left) >= 2 {
		if variadic, ok := left[0].(typesystem.VariableParameter); ok {
			if keywords, ok := left[1].(typesystem.KeywordsParameter); ok && allNamed(right) {
				if typesystem.Equal(variadic.Annotation, keywords.Annotation) && o.allBelow(right, keywords.Annotation) {
					return constraints, true
				}
			}
		}
	}

	switch leftHead := left[0].(type) {
	case typesystem.NamedParameter:
		rightHead, ok := right[0].(typesystem.NamedParameter)
		if !ok || !namesCompatible(leftHead.Name, rightHead.Name) {
			return constraints, false
		}
		constraints, solved := o.solveConstraints(constraints, rightHead.Annotation, leftHead.Annotation)
		if !solved {
			return constraints, false
		}
		return o.solveParameters(constraints, left[1:], right[1:])
	case typesystem.VariableParameter:
		switch rightHead := right[0].(type) {
		case typesystem.VariableParameter:
			constraints, solved := o.solveConstraints(constraints, rightHead.Annotation, leftHead.Annotation)
			if !solved {
				return constraints, false
			}
			return o.solveParameters(constraints, left[1:], right[1:])
		case typesystem.NamedParameter:
			// An anonymous positional argument lands in *args; the variadic
			// stays to absorb more.
			constraints, solved := o.solveConstraints(constraints, rightHead.Annotation, leftHead.Annotation)
			if !solved {
				return constraints, false
			}
			return o.solveParameters(constraints, left, right[1:])
		default:
			return constraints, false
		}
	case typesystem.KeywordsParameter:
		rightHead, ok := right[0].(typesystem.KeywordsParameter)
		if !ok {
			return constraints, false
		}
		constraints, solved := o.solveConstraints(constraints, rightHead.Annotation, leftHead.Annotation)
		if !solved {
			return constraints, false
		}
		return o.solveParameters(constraints, left[1:], right[1:])
	default:
		return constraints, false
	}
}

// namesCompatible accepts equal names and the anonymous positional names
// call sites synthesize.
func namesCompatible(implementation, callSite string) bool {
	return implementation == callSite || strings.HasPrefix(callSite, "$")
}

func allNamed(parameters []typesystem.Parameter) bool {
	for _, parameter := range parameters {
		if _, ok := parameter.(typesystem.NamedParameter); !ok {
			return false
		}
	}
	return true
}

func (o *Order) allBelow(parameters []typesystem.Parameter, annotation typesystem.Type) bool {
	for _, parameter := range parameters {
		if !o.lessOrEqual(parameter.ParameterAnnotation(), annotation) {
			return false
		}
	}
	return true
}
