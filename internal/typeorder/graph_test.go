package typeorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// defaultOrder returns a default engine extended with str (the seed list does
// not carry it) wrapped into an Order with no host callbacks.
func defaultOrder() *Order {
	engine := Default()
	str := typesystem.Primitive{Name: config.StringName}
	engine.Insert(str)
	engine.Connect(typesystem.Bottom, str)
	engine.Connect(str, typesystem.Primitive{Name: config.ObjectName})
	return &Order{Engine: engine}
}

func primitive(name string) typesystem.Primitive {
	return typesystem.Primitive{Name: name}
}

func parametric(name string, parameters ...typesystem.Type) typesystem.Parametric {
	return typesystem.Parametric{Name: name, Parameters: parameters}
}

func TestInsertIsIdempotent(t *testing.T) {
	engine := Create()
	annotation := primitive("A")

	engine.Insert(annotation)
	index, ok := engine.IndexOf(annotation)
	require.True(t, ok)

	engine.Insert(annotation)
	again, ok := engine.IndexOf(annotation)
	require.True(t, ok)
	assert.Equal(t, index, again, "index must be stable across inserts")

	assert.Len(t, engine.Keys(), 1)
}

func TestInsertPreservesExistingIndices(t *testing.T) {
	engine := Create()
	annotations := []typesystem.Type{
		primitive("A"), primitive("B"), primitive("C"),
		parametric("list", primitive("A")),
	}
	indices := map[string]int{}
	for _, annotation := range annotations {
		engine.Insert(annotation)
		index, ok := engine.IndexOf(annotation)
		require.True(t, ok)
		indices[annotation.String()] = index
	}

	for _, annotation := range annotations {
		engine.Insert(annotation)
		index, _ := engine.IndexOf(annotation)
		assert.Equal(t, indices[annotation.String()], index)
	}
}

func TestConnectAbsentEndpointReportsEvent(t *testing.T) {
	engine := Create()
	engine.Insert(primitive("A"))

	var events []Event
	engine.SetReporter(func(event Event) { events = append(events, event) })

	engine.Connect(primitive("A"), primitive("Missing"))
	require.Len(t, events, 1)
	assert.Equal(t, "connect", events[0].Operation)
	assert.Equal(t, "Missing", events[0].Annotation.String())
	assert.NotEmpty(t, events[0].ID)

	// The request was dropped, not partially applied.
	index, _ := engine.IndexOf(primitive("A"))
	assert.Empty(t, engine.edges(index))
}

func TestDisconnectSuccessors(t *testing.T) {
	engine := Create()
	a, b, c := primitive("A"), primitive("B"), primitive("C")
	engine.Insert(a)
	engine.Insert(b)
	engine.Insert(c)
	engine.Connect(a, b)
	engine.Connect(a, c)
	engine.Connect(b, c)

	engine.DisconnectSuccessors(a)

	aIndex, _ := engine.IndexOf(a)
	bIndex, _ := engine.IndexOf(b)
	cIndex, _ := engine.IndexOf(c)
	assert.Empty(t, engine.edges(aIndex))
	assert.Empty(t, engine.backedges(bIndex))
	// B -> C survives.
	require.Len(t, engine.backedges(cIndex), 1)
	assert.Equal(t, bIndex, engine.backedges(cIndex)[0].Target)
}

func TestCopyIsIndependent(t *testing.T) {
	engine := Default()
	copied := engine.Copy()

	extra := primitive("OnlyInCopy")
	copied.Insert(extra)
	assert.True(t, copied.Contains(extra))
	assert.False(t, engine.Contains(extra))

	// Shared annotations keep their indices.
	index, _ := engine.IndexOf(primitive(config.IntegerName))
	copiedIndex, _ := copied.IndexOf(primitive(config.IntegerName))
	assert.Equal(t, index, copiedIndex)
}

func TestConnectParametersMirrorOnBackedge(t *testing.T) {
	engine := Create()
	a, b := primitive("A"), primitive("B")
	engine.Insert(a)
	engine.Insert(b)
	engine.Connect(a, b, primitive("int"))

	aIndex, _ := engine.IndexOf(a)
	bIndex, _ := engine.IndexOf(b)
	require.Len(t, engine.edges(aIndex), 1)
	require.Len(t, engine.backedges(bIndex), 1)
	assert.Equal(t, engine.edges(aIndex)[0].Parameters, engine.backedges(bIndex)[0].Parameters)
}
