package typeorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

func TestInstantiateSuccessorsParameters(t *testing.T) {
	order := defaultOrder()
	engine := order.Engine
	generic := primitive(config.TypingGenericName)
	variable := typesystem.Variable{Name: "_T"}

	// C extends B[int]; B[_T] extends A[_T].
	for _, name := range []string{"A", "B", "C"} {
		engine.Insert(primitive(name))
	}
	engine.Connect(primitive("A"), generic, variable)
	engine.Connect(primitive("B"), generic, variable)
	engine.Connect(primitive("B"), primitive("A"), variable)
	engine.Connect(primitive("C"), primitive("B"), primitive(config.IntegerName))

	parameters, found, err := order.InstantiateSuccessorsParameters(
		parametric("B", primitive(config.IntegerName)), primitive("A"))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, parameters, 1)
	assert.Equal(t, "int", parameters[0].String())

	parameters, found, err = order.InstantiateSuccessorsParameters(primitive("C"), primitive("A"))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, parameters, 1)
	assert.Equal(t, "int", parameters[0].String())

	_, found, err = order.InstantiateSuccessorsParameters(primitive("A"), primitive("C"))
	require.NoError(t, err)
	assert.False(t, found, "walking against edge direction finds nothing")
}

func TestInstantiateSuccessorsParametersArityMismatch(t *testing.T) {
	order := defaultOrder()
	engine := order.Engine
	generic := primitive(config.TypingGenericName)

	engine.Insert(primitive("Pair"))
	engine.Insert(primitive("Base"))
	engine.Connect(primitive("Pair"), generic,
		typesystem.Variable{Name: "_T"}, typesystem.Variable{Name: "_U"})
	engine.Connect(primitive("Pair"), primitive("Base"), typesystem.Variable{Name: "_T"})
	engine.Connect(primitive("Base"), generic, typesystem.Variable{Name: "_T"})

	// Pair applied with the wrong arity: variables map to Any.
	parameters, found, err := order.InstantiateSuccessorsParameters(
		parametric("Pair", primitive(config.IntegerName)), primitive("Base"))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, parameters, 1)
	assert.True(t, typesystem.Equal(parameters[0], typesystem.Any))
}

func TestInstantiateSuccessorsParametersTuple(t *testing.T) {
	order := defaultOrder()
	engine := order.Engine
	generic := primitive(config.TypingGenericName)
	variable := typesystem.Variable{Name: "_T"}

	tuple := primitive(config.TupleName)
	iterable := primitive("typing.Iterable")
	engine.Insert(tuple)
	engine.Insert(iterable)
	engine.Connect(tuple, generic, variable)
	engine.Connect(iterable, generic, variable)
	engine.Connect(tuple, iterable, variable)

	parameters, found, err := order.InstantiateSuccessorsParameters(
		typesystem.BoundedTuple(
			typesystem.Literal{Value: typesystem.IntegerLiteral(1)},
			primitive(config.IntegerName)),
		iterable)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, parameters, 1)
	// Elements joined into one parameter, literals weakened.
	assert.Equal(t, "int", parameters[0].String())
}

func TestInstantiatePredecessorsParameters(t *testing.T) {
	order := defaultOrder()
	engine := order.Engine
	generic := primitive(config.TypingGenericName)
	variable := typesystem.Variable{Name: "_T"}

	engine.Insert(primitive("A"))
	engine.Insert(primitive("B"))
	engine.Connect(primitive("A"), generic, variable)
	engine.Connect(primitive("B"), generic, variable)
	engine.Connect(primitive("B"), primitive("A"), variable)

	parameters, found, err := order.InstantiatePredecessorsParameters(
		parametric("A", primitive(config.IntegerName)), primitive("B"))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, parameters, 1)
	assert.Equal(t, "int", parameters[0].String())
}

func TestInstantiatePredecessorsParametersBottomFallback(t *testing.T) {
	order := defaultOrder()
	engine := order.Engine
	generic := primitive(config.TypingGenericName)

	// B[_T, _U] derives from A[_T]: _U is not propagated through A.
	engine.Insert(primitive("A"))
	engine.Insert(primitive("B"))
	engine.Connect(primitive("A"), generic, typesystem.Variable{Name: "_T"})
	engine.Connect(primitive("B"), generic,
		typesystem.Variable{Name: "_T"}, typesystem.Variable{Name: "_U"})
	engine.Connect(primitive("B"), primitive("A"), typesystem.Variable{Name: "_T"})

	parameters, found, err := order.InstantiatePredecessorsParameters(
		parametric("A", primitive(config.IntegerName)), primitive("B"))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, parameters, 2)
	assert.Equal(t, "int", parameters[0].String())
	assert.True(t, typesystem.Equal(parameters[1], typesystem.Bottom))
}

func TestDiffVariables(t *testing.T) {
	variable := typesystem.Variable{Name: "_T"}
	intType := primitive(config.IntegerName)

	substitutions := diffVariables(typesystem.Subst{},
		parametric("list", variable), parametric("list", intType))
	require.Contains(t, substitutions, "_T")
	assert.Equal(t, "int", substitutions["_T"].String())

	// Mismatched constructors record nothing.
	substitutions = diffVariables(typesystem.Subst{},
		parametric("list", variable), parametric("set", intType))
	assert.Empty(t, substitutions)

	// Length mismatch is tolerated.
	substitutions = diffVariablesList(typesystem.Subst{},
		[]typesystem.Type{variable},
		nil)
	assert.Empty(t, substitutions)
}

func TestPredecessorsWalk(t *testing.T) {
	order := defaultOrder()
	predecessors, err := order.Predecessors(primitive(config.ObjectName))
	require.NoError(t, err)

	names := annotationStrings(predecessors)
	assert.Contains(t, names, config.NumbersNumberName)
	assert.Contains(t, names, config.IntegerName)
	assert.Contains(t, names, "$bottom")
	assert.NotContains(t, names, config.ObjectName)
}

func TestGreatestMatching(t *testing.T) {
	engine := Default()
	matches := func(annotation typesystem.Type) bool {
		name, ok := typesystem.PrimitiveName(annotation)
		return ok && (name == config.IntegerName || name == config.FloatName)
	}

	greatest := engine.Greatest(matches)
	require.Len(t, greatest, 1)
	assert.Equal(t, config.FloatName, greatest[0].String())
}
