package typeorder

import (
	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Default returns an engine pre-populated with the universal scalars, the
// typing-module special forms, the numeric tower, typed dictionaries, and the
// handful of classes the surrounding checker hard-codes. Hosts insert user
// classes on top, run the hygiene passes, then freeze and query.
func Default() *Engine {
	engine := Create()

	engine.Insert(typesystem.Bottom)
	engine.Insert(typesystem.Top)

	object := typesystem.Primitive{Name: config.ObjectName}
	engine.Insert(object)
	engine.Connect(object, typesystem.Top)

	specialForms := []string{
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
	}
	for _, name := range specialForms {
		form := typesystem.Primitive{Name: name}
		engine.Insert(form)
		engine.Connect(typesystem.Bottom, form)
		engine.Connect(form, typesystem.Top)
	}

	// Numeric tower, each step deriving from the next wider one.
	tower := []string{
		config.IntegerName,
		config.FloatName,
		config.ComplexName,
		config.NumbersComplexName,
		config.NumbersNumberName,
	}
	for _, name := range tower {
		engine.Insert(typesystem.Primitive{Name: name})
	}
	for i := 0; i+1 < len(tower); i++ {
		engine.Connect(typesystem.Primitive{Name: tower[i]}, typesystem.Primitive{Name: tower[i+1]})
	}
	engine.Connect(typesystem.Primitive{Name: config.NumbersNumberName}, object)
	engine.Connect(typesystem.Bottom, typesystem.Primitive{Name: config.IntegerName})

	dict := typesystem.Primitive{Name: config.DictName}
	typingDict := typesystem.Primitive{Name: config.TypingDictName}
	engine.Insert(dict)
	engine.Insert(typingDict)
	engine.Connect(typesystem.Bottom, dict)
	engine.Connect(dict, typingDict)
	engine.Connect(typingDict, typesystem.Top)

	none := typesystem.Primitive{Name: config.NoneName}
	engine.Insert(none)
	engine.Connect(typesystem.Bottom, none)
	engine.Connect(none, typesystem.Top)

	// type[_T_meta] derives from Generic[_T_meta].
	typeClass := typesystem.Primitive{Name: config.TypeName}
	generic := typesystem.Primitive{Name: config.TypingGenericName}
	engine.Insert(typeClass)
	engine.Connect(typesystem.Bottom, typeClass)
	engine.Connect(typeClass, generic,
		typesystem.Variable{Name: config.MetaVariableName, Variance: typesystem.Covariant})

	// NonTotalTypedDictionary -> TypedDictionary -> typing.Mapping[str, Any]
	// -> Generic[_T, _T2].
	nonTotal := typesystem.Primitive{Name: config.NonTotalTypedDictionaryName}
	typedDictionary := typesystem.Primitive{Name: config.TypedDictionaryName}
	mapping := typesystem.Primitive{Name: config.TypingMappingName}
	engine.Insert(nonTotal)
	engine.Insert(typedDictionary)
	engine.Insert(mapping)
	engine.Connect(typesystem.Bottom, nonTotal)
	engine.Connect(nonTotal, typedDictionary)
	engine.Connect(typedDictionary, mapping,
		typesystem.Primitive{Name: config.StringName}, typesystem.Any)
	engine.Connect(mapping, generic,
		typesystem.Variable{Name: "_T"}, typesystem.Variable{Name: "_T2"})
	engine.Connect(mapping, typesystem.Top)

	mockBase := typesystem.Primitive{Name: config.MockBaseName}
	nonCallableMock := typesystem.Primitive{Name: config.MockNonCallableMockName}
	engine.Insert(mockBase)
	engine.Insert(nonCallableMock)
	engine.Connect(typesystem.Bottom, nonCallableMock)
	engine.Connect(nonCallableMock, mockBase)
	engine.Connect(mockBase, typesystem.Top)

	return engine
}
