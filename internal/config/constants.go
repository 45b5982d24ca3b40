package config

// Canonical names of the classes seeded by the default builder. The engine
// compares primitives by these dotted names, so every component that
// special-cases a builtin must spell it exactly as listed here.

// Universal classes.
const (
	ObjectName = "object"
	TypeName   = "type"
	NoneName   = "None"
)

// Numeric tower, most precise first.
const (
	IntegerName        = "int"
	FloatName          = "float"
	ComplexName        = "complex"
	NumbersComplexName = "numbers.Complex"
	NumbersNumberName  = "numbers.Number"
)

// Carriers of literal values.
const (
	StringName  = "str"
	BooleanName = "bool"
)

// Builtin containers.
const (
	TupleName      = "tuple"
	DictName       = "dict"
	TypingDictName = "typing.Dict"
)

// typing-module special forms.
const (
	TypingAnyName        = "typing.Any"
	TypingTupleName      = "typing.Tuple"
	TypingCallableName   = "typing.Callable"
	TypingProtocolName   = "typing.Protocol"
	TypingGenericName    = "typing.Generic"
	TypingFrozenSetName  = "typing.FrozenSet"
	TypingOptionalName   = "typing.Optional"
	TypingTypeVarName    = "typing.TypeVar"
	TypingUndeclaredName = "typing.Undeclared"
	TypingUnionName      = "typing.Union"
	TypingNoReturnName   = "typing.NoReturn"
	TypingClassVarName   = "typing.ClassVar"
	TypingNamedTupleName = "typing.NamedTuple"
	TypingMappingName    = "typing.Mapping"
)

// Typed dictionaries.
const (
	TypedDictionaryName         = "TypedDictionary"
	NonTotalTypedDictionaryName = "NonTotalTypedDictionary"
)

// Mock classes the surrounding checker treats specially.
const (
	MockBaseName            = "unittest.mock.Base"
	MockNonCallableMockName = "unittest.mock.NonCallableMock"
)

// MetaVariableName is the declared type variable of `type` and
// `typing.Callable`; both are generic in a single covariant parameter.
const MetaVariableName = "_T_meta"
