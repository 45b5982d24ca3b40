package typeorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

func TestDefaultSeedsScalars(t *testing.T) {
	engine := Default()
	assert.True(t, engine.Contains(typesystem.Bottom))
	assert.True(t, engine.Contains(typesystem.Top))
	assert.True(t, engine.Contains(primitive(config.ObjectName)))
}

func TestDefaultSeedsSpecialForms(t *testing.T) {
	engine := Default()
	for _, name := range []string{
		config.TypingTupleName,
		config.TypingCallableName,
		config.TypingProtocolName,
		config.TypingGenericName,
		config.TypingFrozenSetName,
		config.TypingOptionalName,
		config.TypingTypeVarName,
		config.TypingUndeclaredName,
		config.TypingUnionName,
		config.TypingNoReturnName,
		config.TypingClassVarName,
		config.TypingNamedTupleName,
	} {
		assert.True(t, engine.Contains(primitive(name)), name)
	}
}

func TestDefaultSeedsNumericTower(t *testing.T) {
	order := &Order{Engine: Default()}
	chain := []string{
		config.IntegerName,
		config.FloatName,
		config.ComplexName,
		config.NumbersComplexName,
		config.NumbersNumberName,
		config.ObjectName,
	}
	for i := 0; i+1 < len(chain); i++ {
		result, err := order.LessOrEqual(primitive(chain[i]), primitive(chain[i+1]))
		require.NoError(t, err)
		assert.True(t, result, "%s <= %s", chain[i], chain[i+1])
	}
}

func TestDefaultSeedsTypedDictionaryHierarchy(t *testing.T) {
	engine := Default()
	order := &Order{Engine: engine}

	result, err := order.LessOrEqual(
		primitive(config.NonTotalTypedDictionaryName),
		primitive(config.TypedDictionaryName))
	require.NoError(t, err)
	assert.True(t, result)

	result, err = order.LessOrEqual(
		primitive(config.TypedDictionaryName),
		primitive(config.TypingMappingName))
	require.NoError(t, err)
	assert.True(t, result)

	variables, found, err := engine.Variables(primitive(config.TypingMappingName))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, variables, 2)
}

func TestDefaultSeedsDictAndMocks(t *testing.T) {
	order := &Order{Engine: Default()}

	result, err := order.LessOrEqual(primitive(config.DictName), primitive(config.TypingDictName))
	require.NoError(t, err)
	assert.True(t, result)

	result, err = order.LessOrEqual(
		primitive(config.MockNonCallableMockName),
		primitive(config.MockBaseName))
	require.NoError(t, err)
	assert.True(t, result)

	assert.True(t, order.Engine.Contains(primitive(config.NoneName)))
}

func TestDefaultMetaclassVariables(t *testing.T) {
	engine := Default()

	variables, found, err := engine.Variables(primitive(config.TypeName))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, variables, 1)
	variable, ok := variables[0].(typesystem.Variable)
	require.True(t, ok)
	assert.Equal(t, config.MetaVariableName, variable.Name)
	assert.Equal(t, typesystem.Covariant, variable.Variance)

	variables, found, err = engine.Variables(primitive(config.TypingCallableName))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, variables, 1)
}

func TestDefaultIntegrity(t *testing.T) {
	require.NoError(t, Default().CheckIntegrity())
}
