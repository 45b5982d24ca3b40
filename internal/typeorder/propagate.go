package typeorder

import (
	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Parameter propagation maps a source's concrete parameters along edges: up
// toward successors by substituting declared variables, and down toward
// predecessors by pattern-matching edge parameters against the current ones.

// instantiatedSuccessors expands one step's outgoing edges, substituting the
// step's generic variables with its current parameters. When the arity does
// not line up, every variable maps to Any.
func (o *Order) instantiatedSuccessors(current step) []step {
	annotation := o.Engine.annotation(current.index)
	variables, _ := o.Engine.variables(annotation)

	substitution := typesystem.Subst{}
	for i, variable := range variables {
		v, ok := variable.(typesystem.Variable)
		if !ok {
			continue
		}
		if len(variables) == len(current.parameters) {
			substitution[v.Name] = current.parameters[i]
		} else {
			substitution[v.Name] = typesystem.Any
		}
	}

	targets := o.Engine.edges(current.index)
	steps := make([]step, len(targets))
	for i, target := range targets {
		steps[i] = step{
			index:      target.Target,
			parameters: instantiateList(target.Parameters, substitution),
		}
	}
	return steps
}

// instantiatedPredecessors expands one step's incoming edges. For each
// predecessor, the edge parameters are matched structurally against the
// current parameters to learn what the predecessor's variables stand for;
// variables the predecessor did not propagate fall back to Bottom.
func (o *Order) instantiatedPredecessors(current step) []step {
	targets := o.Engine.backedges(current.index)
	steps := make([]step, len(targets))
	for i, target := range targets {
		substitutions := diffVariablesList(typesystem.Subst{}, target.Parameters, current.parameters)

		predecessor := o.Engine.annotation(target.Target)
		variables, _ := o.Engine.variables(predecessor)
		parameters := make([]typesystem.Type, len(variables))
		for j, variable := range variables {
			v, ok := variable.(typesystem.Variable)
			if !ok {
				parameters[j] = typesystem.Bottom
				continue
			}
			if concrete, ok := substitutions[v.Name]; ok {
				parameters[j] = concrete
			} else {
				parameters[j] = typesystem.Bottom
			}
		}
		if len(parameters) == 0 {
			parameters = nil
		}
		steps[i] = step{index: target.Target, parameters: parameters}
	}
	return steps
}

// InstantiateSuccessorsParameters walks forward from source's primitive and
// returns the parameters the target primitive is instantiated with as viewed
// from source. The second result is false when the target is not an ancestor.
func (o *Order) InstantiateSuccessorsParameters(source typesystem.Type, target typesystem.Type) (parameters []typesystem.Type, found bool, err error) {
	defer recoverUntracked(&err)
	parameters, found = o.instantiateSuccessorsParameters(source, target)
	return parameters, found, nil
}

func (o *Order) instantiateSuccessorsParameters(source, target typesystem.Type) ([]typesystem.Type, bool) {
	targetName, ok := typesystem.PrimitiveName(target)
	if !ok {
		raiseUntracked(target)
	}

	primitive, parameters := typesystem.Split(source)
	if tuple, ok := source.(typesystem.Tuple); ok {
		// A tuple's elements collapse into the single parameter of its
		// parametric form.
		joined := typesystem.Bottom
		for _, element := range tuple.Elements {
			joined = o.join(joined, element)
		}
		parameters = []typesystem.Type{typesystem.WeakenLiterals(joined)}
	}

	sourceIndex := o.Engine.indexOf(primitive)

	// A callable target has no tracked ancestry to walk; the current
	// parameters are taken as-is.
	if targetName == config.TypingCallableName {
		return parameters, true
	}

	start := step{index: sourceIndex, parameters: parameters}
	targetIndex := o.Engine.indexOf(typesystem.Primitive{Name: targetName})

	var result []typesystem.Type
	found := false
	breadthFirst(start, o.instantiatedSuccessors, func(current step) bool {
		if current.index == targetIndex {
			result = current.parameters
			found = true
		}
		return found
	})
	return result, found
}

// InstantiatePredecessorsParameters is the dual walk: it returns the
// parameters the target primitive carries as viewed from a descendant
// perspective of source.
func (o *Order) InstantiatePredecessorsParameters(source typesystem.Type, target typesystem.Type) (parameters []typesystem.Type, found bool, err error) {
	defer recoverUntracked(&err)

	targetName, ok := typesystem.PrimitiveName(target)
	if !ok {
		raiseUntracked(target)
	}

	primitive, sourceParameters := typesystem.Split(source)
	start := step{index: o.Engine.indexOf(primitive), parameters: sourceParameters}
	targetIndex := o.Engine.indexOf(typesystem.Primitive{Name: targetName})

	breadthFirst(start, o.instantiatedPredecessors, func(current step) bool {
		if current.index == targetIndex {
			parameters = current.parameters
			found = true
		}
		return found
	})
	return parameters, found, nil
}

// diffVariables records, for every variable occurring in the abstract term,
// the concrete subterm found in the same position. Identical outer
// constructors recurse componentwise; anything else leaves the map unchanged.
func diffVariables(substitutions typesystem.Subst, abstract, concrete typesystem.Type) typesystem.Subst {
	switch left := abstract.(type) {
	case typesystem.Variable:
		substitutions[left.Name] = concrete
	case typesystem.Parametric:
		if right, ok := concrete.(typesystem.Parametric); ok && left.Name == right.Name {
			diffVariablesList(substitutions, left.Parameters, right.Parameters)
		}
	case typesystem.Optional:
		if right, ok := concrete.(typesystem.Optional); ok {
			diffVariables(substitutions, left.Inner, right.Inner)
		}
	case typesystem.Union:
		if right, ok := concrete.(typesystem.Union); ok {
			diffVariablesList(substitutions, left.Alternatives, right.Alternatives)
		}
	case typesystem.Tuple:
		if right, ok := concrete.(typesystem.Tuple); ok && left.Unbounded == right.Unbounded {
			diffVariablesList(substitutions, left.Elements, right.Elements)
		}
	case typesystem.Meta:
		if right, ok := concrete.(typesystem.Meta); ok {
			diffVariables(substitutions, left.Inner, right.Inner)
		}
	case typesystem.Callable:
		if right, ok := concrete.(typesystem.Callable); ok {
			diffVariables(substitutions, left.Implementation.Annotation, right.Implementation.Annotation)
			if left.Implementation.Defined && right.Implementation.Defined {
				for i, parameter := range left.Implementation.Parameters {
					if i < len(right.Implementation.Parameters) {
						diffVariables(substitutions,
							parameter.ParameterAnnotation(),
							right.Implementation.Parameters[i].ParameterAnnotation())
					}
				}
			}
		}
	}
	return substitutions
}

// diffVariablesList zips two lists, tolerating length mismatch.
func diffVariablesList(substitutions typesystem.Subst, abstract, concrete []typesystem.Type) typesystem.Subst {
	for i, left := range abstract {
		if i >= len(concrete) {
			break
		}
		diffVariables(substitutions, left, concrete[i])
	}
	return substitutions
}

func instantiateList(types []typesystem.Type, substitution typesystem.Subst) []typesystem.Type {
	if len(types) == 0 {
		return nil
	}
	result := make([]typesystem.Type, len(types))
	for i, t := range types {
		result[i] = t.Instantiate(substitution)
	}
	return result
}
