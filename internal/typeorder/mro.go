package typeorder

import (
	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Linearize computes the C3 method resolution order of an annotation. The
// result always starts with the annotation itself.
func (e *Engine) Linearize(annotation typesystem.Type) (linearization []typesystem.Type, err error) {
	defer recoverUntracked(&err)
	return e.linearize(annotation)
}

// Successors returns the linearization with the annotation itself stripped.
func (e *Engine) Successors(annotation typesystem.Type) ([]typesystem.Type, error) {
	linearization, err := e.Linearize(annotation)
	if err != nil {
		return nil, err
	}
	return linearization[1:], nil
}

func (e *Engine) linearize(annotation typesystem.Type) ([]typesystem.Type, error) {
	parents := e.instantiatedImmediateSuccessors(annotation)

	sequences := make([][]typesystem.Type, 0, len(parents)+1)
	for _, parent := range parents {
		linearized, err := e.linearize(parent)
		if err != nil {
			return nil, err
		}
		sequences = append(sequences, linearized)
	}
	sequences = append(sequences, parents)

	merged, ok := c3Merge(sequences)
	if !ok {
		return nil, &InconsistentMROError{Annotation: annotation}
	}
	return append([]typesystem.Type{annotation}, merged...), nil
}

// instantiatedImmediateSuccessors returns the direct superclasses of an
// annotation with each edge's parameters rewritten from the class's generic
// declaration into the annotation's actual parameters. Mismatched arity drops
// the parameters.
func (e *Engine) instantiatedImmediateSuccessors(annotation typesystem.Type) []typesystem.Type {
	primitive, parameters := typesystem.Split(annotation)
	index := e.indexOf(primitive)

	variables, _ := e.variables(primitive)
	substitution := typesystem.Subst{}
	if len(variables) == len(parameters) {
		for i, variable := range variables {
			if v, ok := variable.(typesystem.Variable); ok {
				substitution[v.Name] = parameters[i]
			}
		}
	}

	var successors []typesystem.Type
	for _, target := range e.edges(index) {
		successor := e.annotation(target.Target)
		if typesystem.Equal(successor, typesystem.Top) {
			continue
		}
		name, ok := typesystem.PrimitiveName(successor)
		if !ok {
			continue
		}
		// The Generic edge only records declared variables; it is not a base.
		if name == config.TypingGenericName {
			continue
		}
		if len(target.Parameters) == 0 {
			successors = append(successors, typesystem.Primitive{Name: name})
			continue
		}
		instantiated := instantiateList(target.Parameters, substitution)
		if len(substitution) != len(variables) {
			// The annotation did not supply its declared parameters; drop
			// them rather than leak variables.
			successors = append(successors, typesystem.Primitive{Name: name})
			continue
		}
		successors = append(successors, typesystem.Parametric{Name: name, Parameters: instantiated})
	}
	return successors
}

// c3Merge repeatedly emits a valid head: the first element of some sequence
// appearing in no other sequence's tail. No valid head while elements remain
// means the hierarchy admits no consistent linearization.
func c3Merge(sequences [][]typesystem.Type) ([]typesystem.Type, bool) {
	remaining := make([][]typesystem.Type, 0, len(sequences))
	for _, sequence := range sequences {
		if len(sequence) > 0 {
			remaining = append(remaining, sequence)
		}
	}

	var merged []typesystem.Type
	for len(remaining) > 0 {
		head, ok := validHead(remaining)
		if !ok {
			return nil, false
		}
		merged = append(merged, head)

		next := remaining[:0]
		for _, sequence := range remaining {
			if typesystem.Equal(sequence[0], head) {
				sequence = sequence[1:]
			}
			if len(sequence) > 0 {
				next = append(next, sequence)
			}
		}
		remaining = next
	}
	return merged, true
}

func validHead(sequences [][]typesystem.Type) (typesystem.Type, bool) {
	for _, candidate := range sequences {
		head := candidate[0]
		if !inAnyTail(sequences, head) {
			return head, true
		}
	}
	return nil, false
}

func inAnyTail(sequences [][]typesystem.Type, head typesystem.Type) bool {
	for _, sequence := range sequences {
		for _, element := range sequence[1:] {
			if typesystem.Equal(element, head) {
				return true
			}
		}
	}
	return false
}
