package typeorder

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// step is one BFS worklist entry: a vertex plus the concrete parameters the
// walk has propagated onto it.
type step struct {
	index      int
	parameters []typesystem.Type
}

// breadthFirst walks the graph from start, expanding each visited step
// through expand, until visit returns true. Each vertex is visited at most
// once, in first-reached order.
func breadthFirst(start step, expand func(step) []step, visit func(step) bool) {
	visited := set.New[int](16)
	worklist := []step{start}
	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]
		if !visited.Insert(current.index) {
			continue
		}
		if visit(current) {
			return
		}
		worklist = append(worklist, expand(current)...)
	}
}

func rawSuccessors(e *Engine) func(step) []step {
	return func(current step) []step {
		targets := e.edges(current.index)
		steps := make([]step, len(targets))
		for i, target := range targets {
			steps[i] = step{index: target.Target}
		}
		return steps
	}
}

func rawPredecessors(e *Engine) func(step) []step {
	return func(current step) []step {
		targets := e.backedges(current.index)
		steps := make([]step, len(targets))
		for i, target := range targets {
			steps[i] = step{index: target.Target}
		}
		return steps
	}
}

// reachable reports whether to is forward-reachable from from.
func (e *Engine) reachable(from, to int) bool {
	found := false
	breadthFirst(step{index: from}, rawSuccessors(e), func(current step) bool {
		if current.index == to {
			found = true
		}
		return found
	})
	return found
}

// Predecessors returns every annotation reachable through backward edges,
// with parameters propagated down the walk, in breadth-first order. The
// starting annotation itself is not included.
func (o *Order) Predecessors(annotation typesystem.Type) (predecessors []typesystem.Type, err error) {
	defer recoverUntracked(&err)

	primitive, parameters := typesystem.Split(annotation)
	start := step{index: o.Engine.indexOf(primitive), parameters: parameters}
	breadthFirst(start, o.instantiatedPredecessors, func(current step) bool {
		if current.index == start.index {
			return false
		}
		predecessors = append(predecessors, o.Engine.stepAnnotation(current))
		return false
	})
	return predecessors, nil
}

// Greatest returns the greatest tracked annotations satisfying matches:
// walking down from Top, the first matching vertex on each path is kept and
// its predecessors are not explored further.
func (e *Engine) Greatest(matches func(typesystem.Type) bool) []typesystem.Type {
	topIndex, ok := e.IndexOf(typesystem.Top)
	if !ok {
		return nil
	}

	var result []typesystem.Type
	visited := set.New[int](16)
	worklist := []int{topIndex}
	for len(worklist) > 0 {
		index := worklist[0]
		worklist = worklist[1:]
		if !visited.Insert(index) {
			continue
		}
		annotation := e.annotation(index)
		if index != topIndex && matches(annotation) {
			result = append(result, annotation)
			continue
		}
		for _, target := range e.backedges(index) {
			worklist = append(worklist, target.Target)
		}
	}
	return result
}

// stepAnnotation rebuilds the type a step denotes: the vertex annotation,
// parameterized when the walk carried parameters onto it.
func (e *Engine) stepAnnotation(current step) typesystem.Type {
	annotation := e.annotation(current.index)
	if len(current.parameters) == 0 {
		return annotation
	}
	name, ok := typesystem.PrimitiveName(annotation)
	if !ok {
		return annotation
	}
	return typesystem.Parametric{Name: name, Parameters: current.parameters}
}

func (o *Order) stepAnnotation(current step) typesystem.Type {
	return o.Engine.stepAnnotation(current)
}
