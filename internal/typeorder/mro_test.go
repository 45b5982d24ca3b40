package typeorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

func annotationStrings(annotations []typesystem.Type) []string {
	strings := make([]string, len(annotations))
	for i, annotation := range annotations {
		strings[i] = annotation.String()
	}
	return strings
}

func TestSuccessorsInstantiatesParameters(t *testing.T) {
	order := defaultOrder()
	engine := order.Engine
	generic := primitive(config.TypingGenericName)
	variable := typesystem.Variable{Name: "_T"}

	// C extends B[int]; B[_T] extends A[_T]; A[_T] extends object.
	for _, name := range []string{"A", "B", "C"} {
		engine.Insert(primitive(name))
		engine.Connect(typesystem.Bottom, primitive(name))
	}
	engine.Connect(primitive("A"), generic, variable)
	engine.Connect(primitive("A"), primitive(config.ObjectName))
	engine.Connect(primitive("B"), generic, variable)
	engine.Connect(primitive("B"), primitive("A"), variable)
	engine.Connect(primitive("C"), primitive("B"), primitive(config.IntegerName))

	successors, err := engine.Successors(primitive("C"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B[int]", "A[int]", "object"}, annotationStrings(successors))
}

func TestLinearizeKeepsSelfAsHead(t *testing.T) {
	engine := Default()
	linearization, err := engine.Linearize(primitive(config.IntegerName))
	require.NoError(t, err)
	require.NotEmpty(t, linearization)
	assert.Equal(t, config.IntegerName, linearization[0].String())

	successors, err := engine.Successors(primitive(config.IntegerName))
	require.NoError(t, err)
	for _, successor := range successors {
		assert.NotEqual(t, config.IntegerName, successor.String())
	}
}

func TestDiamondLinearization(t *testing.T) {
	engine := Default()
	object := primitive(config.ObjectName)
	for _, name := range []string{"A", "B", "C", "D"} {
		engine.Insert(primitive(name))
		engine.Connect(typesystem.Bottom, primitive(name))
	}
	// D(B, C); B(A); C(A); A(object).
	engine.Connect(primitive("A"), object)
	engine.Connect(primitive("B"), primitive("A"))
	engine.Connect(primitive("C"), primitive("A"))
	engine.Connect(primitive("D"), primitive("B"))
	engine.Connect(primitive("D"), primitive("C"))

	successors, err := engine.Successors(primitive("D"))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A", "object"}, annotationStrings(successors))
}

func TestInconsistentLinearization(t *testing.T) {
	engine := Default()
	object := primitive(config.ObjectName)
	for _, name := range []string{"A", "B", "C"} {
		engine.Insert(primitive(name))
	}
	// B(A); C(A, B): A precedes B in C's bases but B must come before its
	// own base A, so no valid head exists.
	engine.Connect(primitive("A"), object)
	engine.Connect(primitive("B"), primitive("A"))
	engine.Connect(primitive("C"), primitive("A"))
	engine.Connect(primitive("C"), primitive("B"))

	_, err := engine.Successors(primitive("C"))
	var inconsistent *InconsistentMROError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "C", inconsistent.Annotation.String())
}

func TestLinearizeUntracked(t *testing.T) {
	engine := Default()
	_, err := engine.Linearize(primitive("ghost.Class"))
	var untracked *UntrackedError
	require.ErrorAs(t, err, &untracked)
}
