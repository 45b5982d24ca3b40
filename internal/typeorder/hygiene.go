package typeorder

import (
	"fmt"
	"sort"
	"strings"

	set "github.com/hashicorp/go-set/v3"

	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Normalize sorts and deduplicates every backedge list and the successor
// list of Bottom.
func (e *Engine) Normalize() {
	for _, index := range e.tables.Backedges().Keys() {
		e.tables.Backedges().Set(index, sortedTargets(e.backedges(index)))
	}
	if bottomIndex, ok := e.IndexOf(typesystem.Bottom); ok {
		e.tables.Edges().Set(bottomIndex, sortedTargets(e.edges(bottomIndex)))
	}
}

func sortedTargets(targets []Target) []Target {
	sorted := append([]Target{}, targets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Target != sorted[j].Target {
			return sorted[i].Target < sorted[j].Target
		}
		return parametersKey(sorted[i].Parameters) < parametersKey(sorted[j].Parameters)
	})
	deduped := sorted[:0]
	for i, target := range sorted {
		if i > 0 && target.Target == sorted[i-1].Target &&
			parametersKey(target.Parameters) == parametersKey(sorted[i-1].Parameters) {
			continue
		}
		deduped = append(deduped, target)
	}
	return deduped
}

func parametersKey(parameters []typesystem.Type) string {
	parts := make([]string, len(parameters))
	for i, parameter := range parameters {
		parts[i] = parameter.String()
	}
	return strings.Join(parts, ",")
}

// Deduplicate compresses the forward and backward adjacency of each listed
// annotation, keeping the first occurrence per target index.
func (e *Engine) Deduplicate(annotations []typesystem.Type) {
	for _, annotation := range annotations {
		index, ok := e.IndexOf(annotation)
		if !ok {
			continue
		}
		e.tables.Edges().Set(index, firstPerTarget(e.edges(index)))
		e.tables.Backedges().Set(index, firstPerTarget(e.backedges(index)))
	}
}

func firstPerTarget(targets []Target) []Target {
	seen := set.New[int](len(targets))
	kept := targets[:0]
	for _, target := range targets {
		if seen.Insert(target.Target) {
			kept = append(kept, target)
		}
	}
	return kept
}

// RemoveExtraEdges drops direct edges to top (and from bottom) for listed
// vertices that have other successors (respectively predecessors), so the
// universal bounds do not shadow real hierarchy.
func (e *Engine) RemoveExtraEdges(bottom, top typesystem.Type, annotations []typesystem.Type) {
	topIndex, topOK := e.IndexOf(top)
	bottomIndex, bottomOK := e.IndexOf(bottom)

	for _, annotation := range annotations {
		index, ok := e.IndexOf(annotation)
		if !ok {
			continue
		}

		if topOK {
			forward := e.edges(index)
			if hasTarget(forward, topIndex) && countOtherTargets(forward, topIndex) > 0 {
				e.tables.Edges().Set(index, withoutTarget(forward, topIndex))
				e.tables.Backedges().Set(topIndex, withoutTarget(e.backedges(topIndex), index))
			}
		}

		if bottomOK {
			backward := e.backedges(index)
			if hasTarget(backward, bottomIndex) && countOtherTargets(backward, bottomIndex) > 0 {
				e.tables.Backedges().Set(index, withoutTarget(backward, bottomIndex))
				e.tables.Edges().Set(bottomIndex, withoutTarget(e.edges(bottomIndex), index))
			}
		}
	}
}

func hasTarget(targets []Target, index int) bool {
	for _, target := range targets {
		if target.Target == index {
			return true
		}
	}
	return false
}

func countOtherTargets(targets []Target, index int) int {
	count := 0
	for _, target := range targets {
		if target.Target != index {
			count++
		}
	}
	return count
}

func withoutTarget(targets []Target, index int) []Target {
	kept := make([]Target, 0, len(targets))
	for _, target := range targets {
		if target.Target != index {
			kept = append(kept, target)
		}
	}
	return kept
}

// ConnectAnnotationsToTop connects every listed vertex that has no outgoing
// edges and does not already reach top in the graph (top itself is left
// alone). Untracked annotations are skipped.
func (e *Engine) ConnectAnnotationsToTop(top typesystem.Type, annotations []typesystem.Type) {
	topIndex, topTracked := e.IndexOf(top)
	for _, annotation := range annotations {
		index, ok := e.IndexOf(annotation)
		if !ok {
			continue
		}
		if len(e.edges(index)) > 0 {
			continue
		}
		if topTracked && e.reachable(index, topIndex) {
			continue
		}
		e.Connect(annotation, top)
	}
}

// CheckIntegrity verifies the structural invariants: Top and Bottom present,
// every key present in all four tables, matching forward/backward mirrors,
// and no cycles.
func (e *Engine) CheckIntegrity() error {
	if !e.Contains(typesystem.Bottom) {
		return &IncompleteError{Reason: "missing Bottom"}
	}
	if !e.Contains(typesystem.Top) {
		return &IncompleteError{Reason: "missing Top"}
	}

	for _, key := range e.tables.Indices().Keys() {
		index, _ := e.tables.Indices().Get(key)
		if _, ok := e.tables.Annotations().Get(index); !ok {
			return &IncompleteError{Reason: fmt.Sprintf("no annotation for %q", key)}
		}
		if _, ok := e.tables.Edges().Get(index); !ok {
			return &IncompleteError{Reason: fmt.Sprintf("no edges entry for %q", key)}
		}
		if _, ok := e.tables.Backedges().Get(index); !ok {
			return &IncompleteError{Reason: fmt.Sprintf("no backedges entry for %q", key)}
		}
	}

	for _, index := range e.tables.Edges().Keys() {
		for _, target := range e.edges(index) {
			if !hasMirror(e.backedges(target.Target), index, target.Parameters) {
				return &IncompleteError{Reason: fmt.Sprintf(
					"edge %d -> %d has no backedge", index, target.Target)}
			}
		}
	}
	for _, index := range e.tables.Backedges().Keys() {
		for _, target := range e.backedges(index) {
			if !hasMirror(e.edges(target.Target), index, target.Parameters) {
				return &IncompleteError{Reason: fmt.Sprintf(
					"backedge %d -> %d has no edge", index, target.Target)}
			}
		}
	}

	return e.checkAcyclic()
}

func hasMirror(targets []Target, index int, parameters []typesystem.Type) bool {
	key := parametersKey(parameters)
	for _, target := range targets {
		if target.Target == index && parametersKey(target.Parameters) == key {
			return true
		}
	}
	return false
}

// checkAcyclic runs a colored depth-first search over the forward edges.
func (e *Engine) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	colors := map[int]int{}

	var visit func(index int) error
	visit = func(index int) error {
		colors[index] = grey
		for _, target := range e.edges(index) {
			switch colors[target.Target] {
			case grey:
				return &CyclicError{Annotation: e.annotation(target.Target)}
			case white:
				if err := visit(target.Target); err != nil {
					return err
				}
			}
		}
		colors[index] = black
		return nil
	}

	for _, index := range e.tables.Edges().Keys() {
		if colors[index] == white {
			if err := visit(index); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToDot renders the graph as deterministic Graphviz input.
func (e *Engine) ToDot() string {
	var b strings.Builder
	b.WriteString("digraph {\n")
	for _, index := range e.tables.Annotations().Keys() {
		fmt.Fprintf(&b, "  %d[label=%q]\n", index, e.annotation(index).String())
	}
	for _, index := range e.tables.Edges().Keys() {
		for _, target := range sortedTargets(e.edges(index)) {
			if len(target.Parameters) > 0 {
				fmt.Fprintf(&b, "  %d -> %d[label=%q]\n", index, target.Target, parametersKey(target.Parameters))
			} else {
				fmt.Fprintf(&b, "  %d -> %d\n", index, target.Target)
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
