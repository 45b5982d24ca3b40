package store

import (
	"sort"

	"github.com/pyrite-check/pyrite/internal/typesystem"
)

type mapTable[K ordered, V any] struct {
	entries map[K]V
}

func newMapTable[K ordered, V any]() *mapTable[K, V] {
	return &mapTable[K, V]{entries: make(map[K]V)}
}

func (t *mapTable[K, V]) Get(key K) (V, bool) {
	value, ok := t.entries[key]
	return value, ok
}

func (t *mapTable[K, V]) Set(key K, value V) {
	t.entries[key] = value
}

func (t *mapTable[K, V]) Keys() []K {
	keys := make([]K, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (t *mapTable[K, V]) Length() int { return len(t.entries) }

type memory struct {
	annotations *mapTable[int, typesystem.Type]
	indices     *mapTable[string, int]
	edges       *mapTable[int, []Target]
	backedges   *mapTable[int, []Target]
}

// Memory returns an empty in-process table set.
func Memory() Tables {
	return &memory{
		annotations: newMapTable[int, typesystem.Type](),
		indices:     newMapTable[string, int](),
		edges:       newMapTable[int, []Target](),
		backedges:   newMapTable[int, []Target](),
	}
}

func (m *memory) Annotations() Table[int, typesystem.Type] { return m.annotations }
func (m *memory) Indices() Table[string, int]              { return m.indices }
func (m *memory) Edges() Table[int, []Target]              { return m.edges }
func (m *memory) Backedges() Table[int, []Target]          { return m.backedges }

// Copy deep-copies a table set into fresh memory tables. Type terms are
// immutable and shared; adjacency slices are duplicated.
func Copy(tables Tables) Tables {
	copied := Memory()
	for _, key := range tables.Annotations().Keys() {
		annotation, _ := tables.Annotations().Get(key)
		copied.Annotations().Set(key, annotation)
	}
	for _, key := range tables.Indices().Keys() {
		index, _ := tables.Indices().Get(key)
		copied.Indices().Set(key, index)
	}
	for _, key := range tables.Edges().Keys() {
		targets, _ := tables.Edges().Get(key)
		copied.Edges().Set(key, copyTargets(targets))
	}
	for _, key := range tables.Backedges().Keys() {
		targets, _ := tables.Backedges().Get(key)
		copied.Backedges().Set(key, copyTargets(targets))
	}
	return copied
}

func copyTargets(targets []Target) []Target {
	copied := make([]Target, len(targets))
	copy(copied, targets)
	return copied
}
