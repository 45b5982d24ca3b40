// Package typeorder maintains a directed graph of nominal types ordered by
// the subclass relation and answers the order queries a type checker needs:
// subtyping, join/meet, method resolution order, parameter propagation, and
// constraint solving. The lifecycle is build, freeze, query: mutators require
// exclusive access, queries never touch the graph.
package typeorder

import (
	"log/slog"

	"github.com/pyrite-check/pyrite/internal/typeorder/store"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Target is one adjacency entry of the graph.
type Target = store.Target

// indexSpace bounds the probed hash so vertex indices stay in friendly int
// territory.
const indexSpace = 1 << 31

// Engine is one type-order graph plus its tables. Engines are not safe for
// concurrent mutation; Copy produces an independent engine for parallel
// querying.
type Engine struct {
	tables store.Tables
	report Reporter
	logger *slog.Logger
}

// Create returns an empty engine over in-memory tables.
func Create() *Engine {
	return Over(store.Memory())
}

// Over returns an empty engine running on the given table set.
func Over(tables store.Tables) *Engine {
	engine := &Engine{tables: tables, logger: slog.Default()}
	engine.report = logReporter(engine.logger)
	return engine
}

// Copy deep-copies the engine so the copy can be queried independently.
func (e *Engine) Copy() *Engine {
	return &Engine{
		tables: store.Copy(e.tables),
		report: e.report,
		logger: e.logger,
	}
}

// Tables exposes the backing tables, for snapshotting a frozen engine.
func (e *Engine) Tables() store.Tables { return e.tables }

// SetLogger replaces the engine's logger (and the default reporter's sink).
func (e *Engine) SetLogger(logger *slog.Logger) {
	e.logger = logger
	e.report = logReporter(logger)
}

// SetReporter replaces the invalid-operation reporter.
func (e *Engine) SetReporter(reporter Reporter) { e.report = reporter }

// Contains reports whether the annotation has been inserted.
func (e *Engine) Contains(annotation typesystem.Type) bool {
	_, ok := e.tables.Indices().Get(annotation.String())
	return ok
}

// IndexOf returns the vertex index of an annotation.
func (e *Engine) IndexOf(annotation typesystem.Type) (int, bool) {
	return e.tables.Indices().Get(annotation.String())
}

// indexOf is the internal lookup; missing annotations raise the untracked
// signal.
func (e *Engine) indexOf(annotation typesystem.Type) int {
	index, ok := e.tables.Indices().Get(annotation.String())
	if !ok {
		raiseUntracked(annotation)
	}
	return index
}

func (e *Engine) annotation(index int) typesystem.Type {
	annotation, _ := e.tables.Annotations().Get(index)
	return annotation
}

func (e *Engine) edges(index int) []Target {
	targets, _ := e.tables.Edges().Get(index)
	return targets
}

func (e *Engine) backedges(index int) []Target {
	targets, _ := e.tables.Backedges().Get(index)
	return targets
}

// Insert adds an annotation as a fresh vertex. Inserting an existing
// annotation is a no-op; indices of previously inserted annotations never
// change. The index is the annotation's hash, probed linearly past occupied
// slots.
func (e *Engine) Insert(annotation typesystem.Type) {
	key := annotation.String()
	if _, ok := e.tables.Indices().Get(key); ok {
		return
	}

	index := int(typesystem.Hash(annotation) % indexSpace)
	for {
		if _, occupied := e.tables.Annotations().Get(index); !occupied {
			break
		}
		index = (index + 1) % indexSpace
	}

	e.tables.Indices().Set(key, index)
	e.tables.Annotations().Set(index, annotation)
	e.tables.Edges().Set(index, nil)
	e.tables.Backedges().Set(index, nil)
}

// Connect records that predecessor derives from successor, substituting
// parameters for the successor's generic parameters. Connecting an absent
// endpoint reports a telemetry event and drops the request; duplicates are
// tolerated until Deduplicate or Normalize runs.
func (e *Engine) Connect(predecessor, successor typesystem.Type, parameters ...typesystem.Type) {
	predecessorIndex, ok := e.tables.Indices().Get(predecessor.String())
	if !ok {
		e.reportInvalidOperation("connect", predecessor)
		return
	}
	successorIndex, ok := e.tables.Indices().Get(successor.String())
	if !ok {
		e.reportInvalidOperation("connect", successor)
		return
	}

	forward := e.edges(predecessorIndex)
	e.tables.Edges().Set(predecessorIndex,
		append(forward, Target{Target: successorIndex, Parameters: parameters}))

	backward := e.backedges(successorIndex)
	e.tables.Backedges().Set(successorIndex,
		append(backward, Target{Target: predecessorIndex, Parameters: parameters}))
}

// DisconnectSuccessors clears the annotation's forward list and removes the
// mirror entries from each target's backward list.
func (e *Engine) DisconnectSuccessors(annotation typesystem.Type) {
	index, ok := e.tables.Indices().Get(annotation.String())
	if !ok {
		e.reportInvalidOperation("disconnect_successors", annotation)
		return
	}

	for _, target := range e.edges(index) {
		backward := e.backedges(target.Target)
		kept := backward[:0]
		for _, entry := range backward {
			if entry.Target != index {
				kept = append(kept, entry)
			}
		}
		e.tables.Backedges().Set(target.Target, kept)
	}
	e.tables.Edges().Set(index, nil)
}

// Keys returns every tracked annotation in ascending index order.
func (e *Engine) Keys() []typesystem.Type {
	indices := e.tables.Annotations().Keys()
	annotations := make([]typesystem.Type, 0, len(indices))
	for _, index := range indices {
		annotations = append(annotations, e.annotation(index))
	}
	return annotations
}
