package typesystem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pyrite-check/pyrite/internal/config"
)

// Tuple is either a bounded tuple of fixed-arity elements or an unbounded
// tuple homogeneous in a single element type. Build through BoundedTuple and
// UnboundedTuple.
type Tuple struct {
	Elements  []Type
	Unbounded bool
}

// BoundedTuple builds tuple[e1, ..., en].
func BoundedTuple(elements ...Type) Tuple {
	return Tuple{Elements: elements}
}

// UnboundedTuple builds tuple[element, ...].
func UnboundedTuple(element Type) Tuple {
	return Tuple{Elements: []Type{element}, Unbounded: true}
}

// Element returns the homogeneous element type of an unbounded tuple.
func (t Tuple) Element() Type { return t.Elements[0] }

func (t Tuple) String() string {
	if t.Unbounded {
		return fmt.Sprintf("%s[%s, ...]", config.TypingTupleName, t.Element())
	}
	return fmt.Sprintf("%s[%s]", config.TypingTupleName, joinTypes(t.Elements, ", "))
}

func (t Tuple) Instantiate(s Subst) Type {
	return Tuple{Elements: instantiateAll(t.Elements, s), Unbounded: t.Unbounded}
}

func (t Tuple) FreeVariables() []Variable { return freeInAll(t.Elements) }

// Field is one entry of a typed dictionary.
type Field struct {
	Name       string
	Annotation Type
}

// TypedDictionary is a structural dict type with per-key annotations. Total
// dictionaries require every field; non-total ones allow omission.
type TypedDictionary struct {
	Fields []Field
	Total  bool
}

func (t TypedDictionary) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Annotation)
	}
	total := "total"
	if !t.Total {
		total = "non-total"
	}
	return fmt.Sprintf("TypedDict(%s)[%s]", total, strings.Join(parts, ", "))
}

func (t TypedDictionary) Instantiate(s Subst) Type {
	fields := make([]Field, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = Field{Name: f.Name, Annotation: f.Annotation.Instantiate(s)}
	}
	return TypedDictionary{Fields: fields, Total: t.Total}
}

func (t TypedDictionary) FreeVariables() []Variable {
	vars := []Variable{}
	for _, f := range t.Fields {
		vars = append(vars, f.Annotation.FreeVariables()...)
	}
	return uniqueVariables(vars)
}

// FieldNamed returns the annotation of the named field.
func (t TypedDictionary) FieldNamed(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Annotation, true
		}
	}
	return nil, false
}

// PrimitiveName returns the nominal class a typed dictionary behaves as when
// no structural rule applies.
func (t TypedDictionary) PrimitiveName() string {
	if t.Total {
		return config.TypedDictionaryName
	}
	return config.NonTotalTypedDictionaryName
}

// LiteralValue is the payload of a Literal type.
type LiteralValue interface {
	literalString() string
	// CarrierName names the primitive the literal weakens to.
	CarrierName() string
}

// IntegerLiteral is a literal int value.
type IntegerLiteral int64

// StringLiteral is a literal str value.
type StringLiteral string

// BooleanLiteral is a literal bool value.
type BooleanLiteral bool

func (v IntegerLiteral) literalString() string { return strconv.FormatInt(int64(v), 10) }
func (v StringLiteral) literalString() string  { return strconv.Quote(string(v)) }
func (v BooleanLiteral) literalString() string { return strconv.FormatBool(bool(v)) }

func (IntegerLiteral) CarrierName() string { return config.IntegerName }
func (StringLiteral) CarrierName() string  { return config.StringName }
func (BooleanLiteral) CarrierName() string { return config.BooleanName }

// Literal is a singleton type inhabited by exactly one value.
type Literal struct {
	Value LiteralValue
}

func (t Literal) String() string {
	return fmt.Sprintf("typing_extensions.Literal[%s]", t.Value.literalString())
}

func (t Literal) Instantiate(Subst) Type    { return t }
func (t Literal) FreeVariables() []Variable { return nil }

// Carrier returns the primitive of the literal's runtime value.
func (t Literal) Carrier() Type {
	return Primitive{Name: t.Value.CarrierName()}
}
