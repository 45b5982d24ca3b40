package typesystem

import (
	"fmt"
	"strings"

	"github.com/pyrite-check/pyrite/internal/config"
)

// Parameter is one formal parameter of a callable overload.
type Parameter interface {
	parameterString() string
	ParameterName() string
	ParameterAnnotation() Type
	instantiateParameter(Subst) Parameter
}

// NamedParameter is an ordinary positional-or-keyword parameter. Default
// records whether the parameter carries a default value.
type NamedParameter struct {
	Name       string
	Annotation Type
	Default    bool
}

// VariableParameter is a *args parameter.
type VariableParameter struct {
	Name       string
	Annotation Type
}

// KeywordsParameter is a **kwargs parameter.
type KeywordsParameter struct {
	Name       string
	Annotation Type
}

func (p NamedParameter) parameterString() string {
	suffix := ""
	if p.Default {
		suffix = "=..."
	}
	return fmt.Sprintf("%s: %s%s", p.Name, p.Annotation, suffix)
}

func (p VariableParameter) parameterString() string {
	return fmt.Sprintf("*%s: %s", p.Name, p.Annotation)
}

func (p KeywordsParameter) parameterString() string {
	return fmt.Sprintf("**%s: %s", p.Name, p.Annotation)
}

func (p NamedParameter) ParameterName() string    { return p.Name }
func (p VariableParameter) ParameterName() string { return p.Name }
func (p KeywordsParameter) ParameterName() string { return p.Name }

func (p NamedParameter) ParameterAnnotation() Type    { return p.Annotation }
func (p VariableParameter) ParameterAnnotation() Type { return p.Annotation }
func (p KeywordsParameter) ParameterAnnotation() Type { return p.Annotation }

func (p NamedParameter) instantiateParameter(s Subst) Parameter {
	return NamedParameter{Name: p.Name, Annotation: p.Annotation.Instantiate(s), Default: p.Default}
}

func (p VariableParameter) instantiateParameter(s Subst) Parameter {
	return VariableParameter{Name: p.Name, Annotation: p.Annotation.Instantiate(s)}
}

func (p KeywordsParameter) instantiateParameter(s Subst) Parameter {
	return KeywordsParameter{Name: p.Name, Annotation: p.Annotation.Instantiate(s)}
}

// Overload is one signature of a callable: a return annotation plus either a
// defined parameter list or an undefined one (Defined=false), which accepts
// anything.
type Overload struct {
	Annotation Type
	Parameters []Parameter
	Defined    bool
}

func (o Overload) String() string {
	params := "..."
	if o.Defined {
		parts := make([]string, len(o.Parameters))
		for i, p := range o.Parameters {
			parts[i] = p.parameterString()
		}
		params = "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("(%s) -> %s", params, o.Annotation)
}

// Instantiate substitutes through the return annotation and every parameter
// annotation.
func (o Overload) Instantiate(s Subst) Overload {
	result := Overload{Annotation: o.Annotation.Instantiate(s), Defined: o.Defined}
	if o.Defined {
		result.Parameters = make([]Parameter, len(o.Parameters))
		for i, p := range o.Parameters {
			result.Parameters[i] = p.instantiateParameter(s)
		}
	}
	return result
}

func (o Overload) FreeVariables() []Variable {
	vars := o.Annotation.FreeVariables()
	for _, p := range o.Parameters {
		vars = append(vars, p.ParameterAnnotation().FreeVariables()...)
	}
	return uniqueVariables(vars)
}

// Callable is a function type: an implementation signature plus optional
// overloads. A callable with an empty Name is anonymous; named callables
// identify a specific function by qualified name.
type Callable struct {
	Name           string
	Implementation Overload
	Overloads      []Overload
}

func (t Callable) String() string {
	name := t.Name
	if name == "" {
		name = "anonymous"
	}
	overloads := ""
	if len(t.Overloads) > 0 {
		parts := make([]string, len(t.Overloads))
		for i, o := range t.Overloads {
			parts[i] = o.String()
		}
		overloads = "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%s(%s)%s%s", config.TypingCallableName, name, t.Implementation, overloads)
}

func (t Callable) Instantiate(s Subst) Type {
	overloads := make([]Overload, len(t.Overloads))
	for i, o := range t.Overloads {
		overloads[i] = o.Instantiate(s)
	}
	if len(overloads) == 0 {
		overloads = nil
	}
	return Callable{Name: t.Name, Implementation: t.Implementation.Instantiate(s), Overloads: overloads}
}

func (t Callable) FreeVariables() []Variable {
	vars := t.Implementation.FreeVariables()
	for _, o := range t.Overloads {
		vars = append(vars, o.FreeVariables()...)
	}
	return uniqueVariables(vars)
}

// Signatures returns the overloads to try, in selection order: the overloads
// first when any exist, followed by the implementation when it has a defined
// parameter list; just the implementation otherwise.
func (t Callable) Signatures() []Overload {
	if len(t.Overloads) == 0 {
		return []Overload{t.Implementation}
	}
	signatures := append([]Overload{}, t.Overloads...)
	if t.Implementation.Defined {
		signatures = append(signatures, t.Implementation)
	}
	return signatures
}
