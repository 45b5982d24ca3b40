package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pyrite-check/pyrite/internal/typeorder"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

const hierarchyFixture = `
classes:
  - name: example.Container
    variables:
      - name: _T
        variance: covariant
    bases:
      - name: object
  - name: example.IntContainer
    bases:
      - name: example.Container
        parameters: [int]
`

func TestBuildEngineFromYAML(t *testing.T) {
	var hierarchy Hierarchy
	require.NoError(t, yaml.Unmarshal([]byte(hierarchyFixture), &hierarchy))
	require.Len(t, hierarchy.Classes, 2)

	engine, err := buildEngine(hierarchy)
	require.NoError(t, err)
	require.NoError(t, engine.CheckIntegrity())

	order := &typeorder.Order{Engine: engine}
	container := typesystem.Parametric{
		Name:       "example.Container",
		Parameters: []typesystem.Type{typesystem.Primitive{Name: "float"}},
	}
	result, err := order.LessOrEqual(typesystem.Primitive{Name: "example.IntContainer"}, container)
	require.NoError(t, err)
	assert.True(t, result, "IntContainer <= Container[float] under covariance")

	successors, err := engine.Successors(typesystem.Primitive{Name: "example.IntContainer"})
	require.NoError(t, err)
	require.NotEmpty(t, successors)
	assert.Equal(t, "example.Container[int]", successors[0].String())
}

func TestParseVariableRejectsUnknownVariance(t *testing.T) {
	_, err := parseVariable(VariableDescription{Name: "_T", Variance: "sideways"})
	require.Error(t, err)

	variable, err := parseVariable(VariableDescription{Name: "_T", Variance: "contravariant", Bound: "int"})
	require.NoError(t, err)
	assert.Equal(t, typesystem.Contravariant, variable.Variance)
}
