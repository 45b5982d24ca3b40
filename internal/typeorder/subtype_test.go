package typeorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

func lessOrEqual(t *testing.T, order *Order, left, right typesystem.Type) bool {
	t.Helper()
	result, err := order.LessOrEqual(left, right)
	require.NoError(t, err)
	return result
}

func TestLessOrEqualNumericTower(t *testing.T) {
	order := defaultOrder()

	assert.True(t, lessOrEqual(t, order, primitive(config.IntegerName), primitive(config.FloatName)))
	assert.False(t, lessOrEqual(t, order, primitive(config.FloatName), primitive(config.IntegerName)))
	assert.True(t, lessOrEqual(t, order, primitive(config.IntegerName), primitive(config.NumbersNumberName)))
}

func TestLessOrEqualSentinels(t *testing.T) {
	order := defaultOrder()
	intType := primitive(config.IntegerName)

	t.Run("reflexivity over every tracked annotation", func(t *testing.T) {
		for _, annotation := range order.Engine.Keys() {
			assert.True(t, lessOrEqual(t, order, annotation, annotation), annotation.String())
		}
	})

	t.Run("bottom and top bound everything", func(t *testing.T) {
		for _, annotation := range order.Engine.Keys() {
			if typesystem.ContainsUndeclared(annotation) {
				continue
			}
			assert.True(t, lessOrEqual(t, order, typesystem.Bottom, annotation), annotation.String())
			assert.True(t, lessOrEqual(t, order, annotation, typesystem.Top), annotation.String())
		}
	})

	t.Run("any saturates", func(t *testing.T) {
		assert.True(t, lessOrEqual(t, order, intType, typesystem.Any))
		assert.True(t, lessOrEqual(t, order, typesystem.Any, typesystem.Any))
		assert.False(t, lessOrEqual(t, order, typesystem.Any, intType))
	})

	t.Run("nothing above top but top", func(t *testing.T) {
		assert.False(t, lessOrEqual(t, order, typesystem.Top, intType))
		assert.True(t, lessOrEqual(t, order, typesystem.Top, typesystem.Top))
	})

	t.Run("object accepts everything nominal", func(t *testing.T) {
		assert.True(t, lessOrEqual(t, order, primitive(config.StringName), primitive(config.ObjectName)))
		assert.True(t, lessOrEqual(t, order, parametric("list", intType), primitive(config.ObjectName)))
	})
}

// genericOrder builds A < B[int] < object, where B is generic in _T with the
// requested variance.
func genericOrder(variance typesystem.Variance) *Order {
	order := defaultOrder()
	engine := order.Engine

	b := primitive("B")
	engine.Insert(b)
	engine.Connect(typesystem.Bottom, b)
	engine.Connect(b, primitive(config.ObjectName))
	engine.Connect(b, primitive(config.TypingGenericName),
		typesystem.Variable{Name: "_T", Variance: variance})

	a := primitive("A")
	engine.Insert(a)
	engine.Connect(typesystem.Bottom, a)
	engine.Connect(a, b, primitive(config.IntegerName))
	return order
}

func TestLessOrEqualVariance(t *testing.T) {
	intType := primitive(config.IntegerName)
	floatType := primitive(config.FloatName)

	t.Run("invariant", func(t *testing.T) {
		order := genericOrder(typesystem.Invariant)
		assert.True(t, lessOrEqual(t, order, parametric("B", intType), parametric("B", intType)))
		assert.False(t, lessOrEqual(t, order, parametric("B", intType), parametric("B", floatType)))
	})

	t.Run("covariant", func(t *testing.T) {
		order := genericOrder(typesystem.Covariant)
		assert.True(t, lessOrEqual(t, order, parametric("B", intType), parametric("B", floatType)))
		assert.False(t, lessOrEqual(t, order, parametric("B", floatType), parametric("B", intType)))
	})

	t.Run("contravariant", func(t *testing.T) {
		order := genericOrder(typesystem.Contravariant)
		assert.True(t, lessOrEqual(t, order, parametric("B", floatType), parametric("B", intType)))
		assert.False(t, lessOrEqual(t, order, parametric("B", intType), parametric("B", floatType)))
	})

	t.Run("subclass steps into instantiated base", func(t *testing.T) {
		order := genericOrder(typesystem.Invariant)
		assert.True(t, lessOrEqual(t, order, primitive("A"), parametric("B", intType)))
		assert.False(t, lessOrEqual(t, order, primitive("A"), parametric("B", floatType)))
	})
}

func TestLessOrEqualOptionals(t *testing.T) {
	order := defaultOrder()
	intType := primitive(config.IntegerName)
	floatType := primitive(config.FloatName)

	assert.True(t, lessOrEqual(t, order,
		typesystem.Optional{Inner: intType}, typesystem.Optional{Inner: floatType}))
	assert.True(t, lessOrEqual(t, order, intType, typesystem.Optional{Inner: intType}))
	assert.False(t, lessOrEqual(t, order, typesystem.Optional{Inner: intType}, intType))
}

func TestLessOrEqualUnions(t *testing.T) {
	order := defaultOrder()
	intType := primitive(config.IntegerName)
	floatType := primitive(config.FloatName)
	strType := primitive(config.StringName)

	assert.True(t, lessOrEqual(t, order,
		typesystem.NewUnion(intType, floatType), floatType))
	assert.False(t, lessOrEqual(t, order,
		typesystem.NewUnion(intType, strType), floatType))
	assert.True(t, lessOrEqual(t, order,
		intType, typesystem.NewUnion(strType, floatType)))
	assert.False(t, lessOrEqual(t, order,
		strType, typesystem.NewUnion(intType, floatType)))
}

func TestLessOrEqualVariables(t *testing.T) {
	order := defaultOrder()
	intType := primitive(config.IntegerName)
	floatType := primitive(config.FloatName)
	strType := primitive(config.StringName)

	bounded := typesystem.Variable{Name: "_T", Constraints: typesystem.Bound{Upper: intType}}
	assert.True(t, lessOrEqual(t, order, bounded, floatType))
	assert.False(t, lessOrEqual(t, order, bounded, strType))

	explicit := typesystem.Variable{Name: "_U", Constraints: typesystem.Explicit{
		Types: []typesystem.Type{intType, floatType},
	}}
	assert.True(t, lessOrEqual(t, order, explicit, floatType))
	assert.False(t, lessOrEqual(t, order, explicit, strType))

	unconstrained := typesystem.Variable{Name: "_V"}
	assert.False(t, lessOrEqual(t, order, unconstrained, intType))
	assert.False(t, lessOrEqual(t, order, intType, unconstrained))
}

func TestLessOrEqualTuples(t *testing.T) {
	order := defaultOrder()
	intType := primitive(config.IntegerName)
	floatType := primitive(config.FloatName)

	assert.True(t, lessOrEqual(t, order,
		typesystem.BoundedTuple(intType, intType),
		typesystem.BoundedTuple(floatType, floatType)))
	assert.False(t, lessOrEqual(t, order,
		typesystem.BoundedTuple(floatType, intType),
		typesystem.BoundedTuple(intType, floatType)))
	assert.False(t, lessOrEqual(t, order,
		typesystem.BoundedTuple(intType),
		typesystem.BoundedTuple(intType, intType)))

	assert.True(t, lessOrEqual(t, order,
		typesystem.BoundedTuple(intType, intType),
		typesystem.UnboundedTuple(intType)))
	assert.True(t, lessOrEqual(t, order,
		typesystem.BoundedTuple(),
		typesystem.UnboundedTuple(intType)))
	assert.True(t, lessOrEqual(t, order,
		typesystem.UnboundedTuple(intType),
		typesystem.UnboundedTuple(floatType)))

	assert.True(t, lessOrEqual(t, order,
		typesystem.BoundedTuple(intType), primitive(config.TupleName)))
}

func TestLessOrEqualTypedDictionaries(t *testing.T) {
	order := defaultOrder()
	intType := primitive(config.IntegerName)
	strType := primitive(config.StringName)

	movie := typesystem.TypedDictionary{
		Fields: []typesystem.Field{
			{Name: "name", Annotation: strType},
			{Name: "year", Annotation: intType},
		},
		Total: true,
	}
	named := typesystem.TypedDictionary{
		Fields: []typesystem.Field{{Name: "name", Annotation: strType}},
		Total:  true,
	}
	nonTotal := typesystem.TypedDictionary{
		Fields: []typesystem.Field{{Name: "name", Annotation: strType}},
		Total:  false,
	}

	assert.True(t, lessOrEqual(t, order, movie, named))
	assert.False(t, lessOrEqual(t, order, named, movie))
	assert.False(t, lessOrEqual(t, order, named, nonTotal))

	// Nominal behavior outside the structural case.
	assert.True(t, lessOrEqual(t, order, movie, primitive(config.TypedDictionaryName)))
	assert.True(t, lessOrEqual(t, order, movie, primitive(config.TypingMappingName)))
}

func TestLessOrEqualLiterals(t *testing.T) {
	order := defaultOrder()
	three := typesystem.Literal{Value: typesystem.IntegerLiteral(3)}

	assert.True(t, lessOrEqual(t, order, three, primitive(config.IntegerName)))
	assert.True(t, lessOrEqual(t, order, three, primitive(config.FloatName)))
	assert.False(t, lessOrEqual(t, order, primitive(config.IntegerName), three))
}

func TestLessOrEqualCallables(t *testing.T) {
	order := defaultOrder()
	intType := primitive(config.IntegerName)
	strType := primitive(config.StringName)

	implementation := func(annotation typesystem.Type, parameters ...typesystem.Parameter) typesystem.Callable {
		return typesystem.Callable{
			Implementation: typesystem.Overload{
				Annotation: annotation,
				Parameters: parameters,
				Defined:    true,
			},
		}
	}

	takesInt := implementation(intType, typesystem.NamedParameter{Name: "x", Annotation: intType})
	takesIntToo := implementation(intType, typesystem.NamedParameter{Name: "$0", Annotation: intType})
	takesStr := implementation(intType, typesystem.NamedParameter{Name: "$0", Annotation: strType})

	assert.True(t, lessOrEqual(t, order, takesInt, takesIntToo))
	assert.False(t, lessOrEqual(t, order, takesInt, takesStr))

	named := typesystem.Callable{Name: "foo", Implementation: typesystem.Overload{Annotation: intType}}
	namedAgain := typesystem.Callable{Name: "foo", Implementation: typesystem.Overload{Annotation: strType}}
	assert.True(t, lessOrEqual(t, order, named, namedAgain))

	t.Run("meta uses the constructor callback", func(t *testing.T) {
		withConstructor := &Order{
			Engine: order.Engine,
			Constructor: func(annotation typesystem.Type) (typesystem.Type, bool) {
				return implementation(annotation), true
			},
		}
		meta := typesystem.Meta{Inner: intType}
		accepting := implementation(intType)
		assert.True(t, lessOrEqual(t, withConstructor, meta, accepting))
	})

	t.Run("callable below a protocol needs a witness", func(t *testing.T) {
		protocol := primitive("CallableProtocol")
		order.Engine.Insert(protocol)
		withWitness := &Order{
			Engine: order.Engine,
			Implements: func(p, candidate typesystem.Type) Witness {
				if typesystem.Equal(p, protocol) {
					return Implements()
				}
				return DoesNotImplement
			},
		}
		assert.True(t, lessOrEqual(t, withWitness, takesInt, protocol))
		assert.False(t, lessOrEqual(t, order, takesInt, protocol))
	})
}

func TestLessOrEqualUntracked(t *testing.T) {
	order := defaultOrder()

	_, err := order.LessOrEqual(primitive("ghost.Class"), primitive(config.IntegerName))
	var untracked *UntrackedError
	require.ErrorAs(t, err, &untracked)
	assert.Equal(t, "ghost.Class", untracked.Annotation.String())
}
