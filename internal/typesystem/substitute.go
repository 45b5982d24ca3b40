package typesystem

// Subst maps type variable names to replacement terms. Instantiate applies a
// substitution in a single simultaneous pass; replacements are not themselves
// re-substituted, so a substitution can never loop.
type Subst map[string]Type

// Compose combines two substitutions: applying the result is equivalent to
// applying s1 then s2.
func (s1 Subst) Compose(s2 Subst) Subst {
	combined := Subst{}
	for name, t := range s2 {
		combined[name] = t
	}
	for name, t := range s1 {
		combined[name] = t.Instantiate(s2)
	}
	return combined
}

// MarkVariablesAsSimulated hides every free variable of t from FreeVariables,
// for the duration of a signature simulation.
func MarkVariablesAsSimulated(t Type) Type {
	return transformVariables(t, func(v Variable) Variable {
		v.SimulatedBound = true
		return v
	})
}

// FreeSimulatedVariables undoes MarkVariablesAsSimulated.
func FreeSimulatedVariables(t Type) Type {
	return transformVariables(t, func(v Variable) Variable {
		v.SimulatedBound = false
		return v
	})
}

// transformVariables rewrites every Variable occurrence of t through f,
// preserving all other structure.
func transformVariables(t Type, f func(Variable) Variable) Type {
	switch typ := t.(type) {
	case Variable:
		return f(typ)
	case Parametric:
		return Parametric{Name: typ.Name, Parameters: transformAll(typ.Parameters, f)}
	case Optional:
		return Optional{Inner: transformVariables(typ.Inner, f)}
	case Union:
		return Union{Alternatives: transformAll(typ.Alternatives, f)}
	case Tuple:
		return Tuple{Elements: transformAll(typ.Elements, f), Unbounded: typ.Unbounded}
	case Meta:
		return Meta{Inner: transformVariables(typ.Inner, f)}
	case Callable:
		overloads := make([]Overload, len(typ.Overloads))
		for i, o := range typ.Overloads {
			overloads[i] = transformOverload(o, f)
		}
		if len(overloads) == 0 {
			overloads = nil
		}
		return Callable{
			Name:           typ.Name,
			Implementation: transformOverload(typ.Implementation, f),
			Overloads:      overloads,
		}
	case TypedDictionary:
		fields := make([]Field, len(typ.Fields))
		for i, field := range typ.Fields {
			fields[i] = Field{Name: field.Name, Annotation: transformVariables(field.Annotation, f)}
		}
		return TypedDictionary{Fields: fields, Total: typ.Total}
	default:
		return t
	}
}

func transformAll(types []Type, f func(Variable) Variable) []Type {
	result := make([]Type, len(types))
	for i, t := range types {
		result[i] = transformVariables(t, f)
	}
	return result
}

func transformOverload(o Overload, f func(Variable) Variable) Overload {
	result := Overload{Annotation: transformVariables(o.Annotation, f), Defined: o.Defined}
	if o.Defined {
		result.Parameters = make([]Parameter, len(o.Parameters))
		for i, p := range o.Parameters {
			switch p := p.(type) {
			case NamedParameter:
				result.Parameters[i] = NamedParameter{Name: p.Name, Annotation: transformVariables(p.Annotation, f), Default: p.Default}
			case VariableParameter:
				result.Parameters[i] = VariableParameter{Name: p.Name, Annotation: transformVariables(p.Annotation, f)}
			case KeywordsParameter:
				result.Parameters[i] = KeywordsParameter{Name: p.Name, Annotation: transformVariables(p.Annotation, f)}
			}
		}
	}
	return result
}
