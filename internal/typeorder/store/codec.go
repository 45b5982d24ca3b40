package store

import (
	"encoding/json"
	"fmt"

	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// The snapshot codec flattens type terms into a tagged JSON envelope. The
// schema is internal to the snapshot store and carries no stability promise.

type wireType struct {
	Kind       string      `json:"kind"`
	Name       string      `json:"name,omitempty"`
	Parameters []wireType  `json:"parameters,omitempty"`
	Inner      *wireType   `json:"inner,omitempty"`
	Variance   int         `json:"variance,omitempty"`
	Constraint *wireConstraint `json:"constraint,omitempty"`
	Unbounded  bool        `json:"unbounded,omitempty"`
	Total      bool        `json:"total,omitempty"`
	Fields     []wireField `json:"fields,omitempty"`
	Literal    *wireLiteral `json:"literal,omitempty"`
	Signature  *wireOverload `json:"signature,omitempty"`
	Overloads  []wireOverload `json:"overloads,omitempty"`
}

type wireConstraint struct {
	Kind  string     `json:"kind"`
	Upper *wireType  `json:"upper,omitempty"`
	Types []wireType `json:"types,omitempty"`
}

type wireField struct {
	Name       string   `json:"name"`
	Annotation wireType `json:"annotation"`
}

type wireLiteral struct {
	Kind    string `json:"kind"`
	Integer int64  `json:"integer,omitempty"`
	Text    string `json:"text,omitempty"`
	Boolean bool   `json:"boolean,omitempty"`
}

type wireOverload struct {
	Annotation wireType        `json:"annotation"`
	Defined    bool            `json:"defined"`
	Parameters []wireParameter `json:"parameters,omitempty"`
}

type wireParameter struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Annotation wireType `json:"annotation"`
	Default    bool     `json:"default,omitempty"`
}

const (
	kindBottom     = "bottom"
	kindTop        = "top"
	kindAny        = "any"
	kindUndeclared = "undeclared"
	kindPrimitive  = "primitive"
	kindParametric = "parametric"
	kindVariable   = "variable"
	kindOptional   = "optional"
	kindUnion      = "union"
	kindTuple      = "tuple"
	kindCallable   = "callable"
	kindTypedDict  = "typed_dictionary"
	kindLiteral    = "literal"
	kindMeta       = "meta"
)

// MarshalType encodes a term for storage.
func MarshalType(t typesystem.Type) ([]byte, error) {
	wire, err := toWire(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// UnmarshalType decodes a term previously encoded by MarshalType.
func UnmarshalType(data []byte) (typesystem.Type, error) {
	var wire wireType
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("snapshot codec: %w", err)
	}
	return fromWire(wire)
}

func marshalTypes(types []typesystem.Type) ([]byte, error) {
	wires := make([]wireType, len(types))
	for i, t := range types {
		wire, err := toWire(t)
		if err != nil {
			return nil, err
		}
		wires[i] = wire
	}
	return json.Marshal(wires)
}

func unmarshalTypes(data []byte) ([]typesystem.Type, error) {
	var wires []wireType
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("snapshot codec: %w", err)
	}
	return fromWireList(wires)
}

func toWire(t typesystem.Type) (wireType, error) {
	switch typ := t.(type) {
	case typesystem.BottomType:
		return wireType{Kind: kindBottom}, nil
	case typesystem.TopType:
		return wireType{Kind: kindTop}, nil
	case typesystem.AnyType:
		return wireType{Kind: kindAny}, nil
	case typesystem.UndeclaredType:
		return wireType{Kind: kindUndeclared}, nil
	case typesystem.Primitive:
		return wireType{Kind: kindPrimitive, Name: typ.Name}, nil
	case typesystem.Parametric:
		parameters, err := toWireList(typ.Parameters)
		if err != nil {
			return wireType{}, err
		}
		return wireType{Kind: kindParametric, Name: typ.Name, Parameters: parameters}, nil
	case typesystem.Variable:
		constraint, err := constraintToWire(typ.Constraints)
		if err != nil {
			return wireType{}, err
		}
		return wireType{Kind: kindVariable, Name: typ.Name, Variance: int(typ.Variance), Constraint: constraint}, nil
	case typesystem.Optional:
		inner, err := toWire(typ.Inner)
		if err != nil {
			return wireType{}, err
		}
		return wireType{Kind: kindOptional, Inner: &inner}, nil
	case typesystem.Union:
		alternatives, err := toWireList(typ.Alternatives)
		if err != nil {
			return wireType{}, err
		}
		return wireType{Kind: kindUnion, Parameters: alternatives}, nil
	case typesystem.Tuple:
		elements, err := toWireList(typ.Elements)
		if err != nil {
			return wireType{}, err
		}
		return wireType{Kind: kindTuple, Parameters: elements, Unbounded: typ.Unbounded}, nil
	case typesystem.Callable:
		signature, err := overloadToWire(typ.Implementation)
		if err != nil {
			return wireType{}, err
		}
		overloads := make([]wireOverload, len(typ.Overloads))
		for i, o := range typ.Overloads {
			overloads[i], err = overloadToWire(o)
			if err != nil {
				return wireType{}, err
			}
		}
		return wireType{Kind: kindCallable, Name: typ.Name, Signature: &signature, Overloads: overloads}, nil
	case typesystem.TypedDictionary:
		fields := make([]wireField, len(typ.Fields))
		for i, field := range typ.Fields {
			annotation, err := toWire(field.Annotation)
			if err != nil {
				return wireType{}, err
			}
			fields[i] = wireField{Name: field.Name, Annotation: annotation}
		}
		return wireType{Kind: kindTypedDict, Fields: fields, Total: typ.Total}, nil
	case typesystem.Literal:
		literal, err := literalToWire(typ.Value)
		if err != nil {
			return wireType{}, err
		}
		return wireType{Kind: kindLiteral, Literal: &literal}, nil
	case typesystem.Meta:
		inner, err := toWire(typ.Inner)
		if err != nil {
			return wireType{}, err
		}
		return wireType{Kind: kindMeta, Inner: &inner}, nil
	default:
		return wireType{}, fmt.Errorf("snapshot codec: unsupported term %T", t)
	}
}

func toWireList(types []typesystem.Type) ([]wireType, error) {
	wires := make([]wireType, len(types))
	for i, t := range types {
		wire, err := toWire(t)
		if err != nil {
			return nil, err
		}
		wires[i] = wire
	}
	return wires, nil
}

func constraintToWire(c typesystem.Constraints) (*wireConstraint, error) {
	switch constraint := c.(type) {
	case nil, typesystem.Unconstrained:
		return nil, nil
	case typesystem.Bound:
		upper, err := toWire(constraint.Upper)
		if err != nil {
			return nil, err
		}
		return &wireConstraint{Kind: "bound", Upper: &upper}, nil
	case typesystem.Explicit:
		types, err := toWireList(constraint.Types)
		if err != nil {
			return nil, err
		}
		return &wireConstraint{Kind: "explicit", Types: types}, nil
	default:
		return nil, fmt.Errorf("snapshot codec: unsupported constraint %T", c)
	}
}

func literalToWire(v typesystem.LiteralValue) (wireLiteral, error) {
	switch value := v.(type) {
	case typesystem.IntegerLiteral:
		return wireLiteral{Kind: "integer", Integer: int64(value)}, nil
	case typesystem.StringLiteral:
		return wireLiteral{Kind: "string", Text: string(value)}, nil
	case typesystem.BooleanLiteral:
		return wireLiteral{Kind: "boolean", Boolean: bool(value)}, nil
	default:
		return wireLiteral{}, fmt.Errorf("snapshot codec: unsupported literal %T", v)
	}
}

func overloadToWire(o typesystem.Overload) (wireOverload, error) {
	annotation, err := toWire(o.Annotation)
	if err != nil {
		return wireOverload{}, err
	}
	wire := wireOverload{Annotation: annotation, Defined: o.Defined}
	for _, p := range o.Parameters {
		parameterAnnotation, err := toWire(p.ParameterAnnotation())
		if err != nil {
			return wireOverload{}, err
		}
		entry := wireParameter{Name: p.ParameterName(), Annotation: parameterAnnotation}
		switch p := p.(type) {
		case typesystem.NamedParameter:
			entry.Kind = "named"
			entry.Default = p.Default
		case typesystem.VariableParameter:
			entry.Kind = "variable"
		case typesystem.KeywordsParameter:
			entry.Kind = "keywords"
		default:
			return wireOverload{}, fmt.Errorf("snapshot codec: unsupported parameter %T", p)
		}
		wire.Parameters = append(wire.Parameters, entry)
	}
	return wire, nil
}

func fromWire(wire wireType) (typesystem.Type, error) {
	switch wire.Kind {
	case kindBottom:
		return typesystem.Bottom, nil
	case kindTop:
		return typesystem.Top, nil
	case kindAny:
		return typesystem.Any, nil
	case kindUndeclared:
		return typesystem.Undeclared, nil
	case kindPrimitive:
		return typesystem.Primitive{Name: wire.Name}, nil
	case kindParametric:
		parameters, err := fromWireList(wire.Parameters)
		if err != nil {
			return nil, err
		}
		return typesystem.Parametric{Name: wire.Name, Parameters: parameters}, nil
	case kindVariable:
		constraint, err := constraintFromWire(wire.Constraint)
		if err != nil {
			return nil, err
		}
		return typesystem.Variable{
			Name:        wire.Name,
			Variance:    typesystem.Variance(wire.Variance),
			Constraints: constraint,
		}, nil
	case kindOptional:
		inner, err := fromWire(*wire.Inner)
		if err != nil {
			return nil, err
		}
		return typesystem.Optional{Inner: inner}, nil
	case kindUnion:
		alternatives, err := fromWireList(wire.Parameters)
		if err != nil {
			return nil, err
		}
		return typesystem.Union{Alternatives: alternatives}, nil
	case kindTuple:
		elements, err := fromWireList(wire.Parameters)
		if err != nil {
			return nil, err
		}
		return typesystem.Tuple{Elements: elements, Unbounded: wire.Unbounded}, nil
	case kindCallable:
		implementation, err := overloadFromWire(*wire.Signature)
		if err != nil {
			return nil, err
		}
		var overloads []typesystem.Overload
		for _, o := range wire.Overloads {
			overload, err := overloadFromWire(o)
			if err != nil {
				return nil, err
			}
			overloads = append(overloads, overload)
		}
		return typesystem.Callable{Name: wire.Name, Implementation: implementation, Overloads: overloads}, nil
	case kindTypedDict:
		fields := make([]typesystem.Field, len(wire.Fields))
		for i, field := range wire.Fields {
			annotation, err := fromWire(field.Annotation)
			if err != nil {
				return nil, err
			}
			fields[i] = typesystem.Field{Name: field.Name, Annotation: annotation}
		}
		return typesystem.TypedDictionary{Fields: fields, Total: wire.Total}, nil
	case kindLiteral:
		switch wire.Literal.Kind {
		case "integer":
			return typesystem.Literal{Value: typesystem.IntegerLiteral(wire.Literal.Integer)}, nil
		case "string":
			return typesystem.Literal{Value: typesystem.StringLiteral(wire.Literal.Text)}, nil
		case "boolean":
			return typesystem.Literal{Value: typesystem.BooleanLiteral(wire.Literal.Boolean)}, nil
		default:
			return nil, fmt.Errorf("snapshot codec: unknown literal kind %q", wire.Literal.Kind)
		}
	case kindMeta:
		inner, err := fromWire(*wire.Inner)
		if err != nil {
			return nil, err
		}
		return typesystem.Meta{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("snapshot codec: unknown kind %q", wire.Kind)
	}
}

func fromWireList(wires []wireType) ([]typesystem.Type, error) {
	types := make([]typesystem.Type, len(wires))
	for i, wire := range wires {
		t, err := fromWire(wire)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

func constraintFromWire(wire *wireConstraint) (typesystem.Constraints, error) {
	if wire == nil {
		return typesystem.Unconstrained{}, nil
	}
	switch wire.Kind {
	case "bound":
		upper, err := fromWire(*wire.Upper)
		if err != nil {
			return nil, err
		}
		return typesystem.Bound{Upper: upper}, nil
	case "explicit":
		types, err := fromWireList(wire.Types)
		if err != nil {
			return nil, err
		}
		return typesystem.Explicit{Types: types}, nil
	default:
		return nil, fmt.Errorf("snapshot codec: unknown constraint kind %q", wire.Kind)
	}
}

func overloadFromWire(wire wireOverload) (typesystem.Overload, error) {
	annotation, err := fromWire(wire.Annotation)
	if err != nil {
		return typesystem.Overload{}, err
	}
	overload := typesystem.Overload{Annotation: annotation, Defined: wire.Defined}
	for _, p := range wire.Parameters {
		parameterAnnotation, err := fromWire(p.Annotation)
		if err != nil {
			return typesystem.Overload{}, err
		}
		switch p.Kind {
		case "named":
			overload.Parameters = append(overload.Parameters, typesystem.NamedParameter{
				Name: p.Name, Annotation: parameterAnnotation, Default: p.Default,
			})
		case "variable":
			overload.Parameters = append(overload.Parameters, typesystem.VariableParameter{
				Name: p.Name, Annotation: parameterAnnotation,
			})
		case "keywords":
			overload.Parameters = append(overload.Parameters, typesystem.KeywordsParameter{
				Name: p.Name, Annotation: parameterAnnotation,
			})
		default:
			return typesystem.Overload{}, fmt.Errorf("snapshot codec: unknown parameter kind %q", p.Kind)
		}
	}
	return overload, nil
}
