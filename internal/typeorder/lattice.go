package typeorder

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/pyrite-check/pyrite/internal/config"
	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Join returns the least upper bound of two types. An untracked primitive
// degrades the answer to Any rather than failing the query.
func (o *Order) Join(left, right typesystem.Type) typesystem.Type {
	result, err := o.joinChecked(left, right)
	if err != nil {
		o.Engine.logger.Debug("join: untracked operand, degrading to Any",
			"left", left.String(), "right", right.String())
		return typesystem.Any
	}
	return result
}

func (o *Order) joinChecked(left, right typesystem.Type) (result typesystem.Type, err error) {
	defer recoverUntracked(&err)
	return o.join(left, right), nil
}

// Meet returns the greatest lower bound of two types, degrading to Bottom on
// untracked primitives.
func (o *Order) Meet(left, right typesystem.Type) typesystem.Type {
	result, err := o.meetChecked(left, right)
	if err != nil {
		o.Engine.logger.Debug("meet: untracked operand, degrading to Bottom",
			"left", left.String(), "right", right.String())
		return typesystem.Bottom
	}
	return result
}

func (o *Order) meetChecked(left, right typesystem.Type) (result typesystem.Type, err error) {
	defer recoverUntracked(&err)
	return o.meet(left, right), nil
}

// Widen is the termination aid for fixed-point iteration: past the threshold
// the value is coerced to Top, otherwise the iterands are joined.
func (o *Order) Widen(previous, next typesystem.Type, iteration, threshold int) typesystem.Type {
	if iteration > threshold {
		return typesystem.Top
	}
	return o.Join(previous, next)
}

func (o *Order) join(left, right typesystem.Type) typesystem.Type {
	if typesystem.Equal(left, right) {
		return left
	}

	// Sentinels.
	if typesystem.Equal(left, typesystem.Any) || typesystem.Equal(right, typesystem.Any) {
		return typesystem.Any
	}
	if typesystem.Equal(left, typesystem.Bottom) {
		return right
	}
	if typesystem.Equal(right, typesystem.Bottom) {
		return left
	}
	if typesystem.Equal(left, typesystem.Top) || typesystem.Equal(right, typesystem.Top) {
		return typesystem.Top
	}
	if typesystem.Equal(left, typesystem.Undeclared) || typesystem.Equal(right, typesystem.Undeclared) {
		return typesystem.NewUnion(left, right)
	}

	// Optional-of-union absorbs the other side into the union.
	if optional, ok := left.(typesystem.Optional); ok {
		if union, ok := optional.Inner.(typesystem.Union); ok {
			return typesystem.Optional{Inner: typesystem.NewUnion(append(union.Alternatives, right)...)}
		}
	}
	if optional, ok := right.(typesystem.Optional); ok {
		if union, ok := optional.Inner.(typesystem.Union); ok {
			return typesystem.Optional{Inner: typesystem.NewUnion(append(union.Alternatives, left)...)}
		}
	}

	// Unions concatenate; a non-union distributes in unless already below.
	leftUnion, leftIsUnion := left.(typesystem.Union)
	rightUnion, rightIsUnion := right.(typesystem.Union)
	switch {
	case leftIsUnion && rightIsUnion:
		return typesystem.NewUnion(append(leftUnion.Alternatives, rightUnion.Alternatives...)...)
	case leftIsUnion:
		if o.lessOrEqual(right, left) {
			return left
		}
		return typesystem.NewUnion(append(leftUnion.Alternatives, right)...)
	case rightIsUnion:
		if o.lessOrEqual(left, right) {
			return right
		}
		return typesystem.NewUnion(append(rightUnion.Alternatives, left)...)
	}

	// Variables reduce to their ground form.
	if variable, ok := left.(typesystem.Variable); ok {
		return o.join(variable.Ground(), right)
	}
	if variable, ok := right.(typesystem.Variable); ok {
		return o.join(left, variable.Ground())
	}

	// Optionals absorb the other operand inside.
	if optional, ok := left.(typesystem.Optional); ok {
		if rightOptional, ok := right.(typesystem.Optional); ok {
			return typesystem.Optional{Inner: o.join(optional.Inner, rightOptional.Inner)}
		}
		return typesystem.Optional{Inner: o.join(optional.Inner, right)}
	}
	if optional, ok := right.(typesystem.Optional); ok {
		return typesystem.Optional{Inner: o.join(left, optional.Inner)}
	}

	// Tuples.
	if leftTuple, ok := left.(typesystem.Tuple); ok {
		return o.joinTuple(leftTuple, right)
	}
	if rightTuple, ok := right.(typesystem.Tuple); ok {
		return o.joinTuple(rightTuple, left)
	}

	// Callables.
	if leftCallable, ok := left.(typesystem.Callable); ok {
		if rightCallable, ok := right.(typesystem.Callable); ok {
			return o.joinCallables(leftCallable, rightCallable)
		}
	}

	// Typed dictionaries.
	if leftDictionary, ok := left.(typesystem.TypedDictionary); ok {
		if rightDictionary, ok := right.(typesystem.TypedDictionary); ok {
			return joinTypedDictionaries(leftDictionary, rightDictionary)
		}
		return o.join(typesystem.Primitive{Name: leftDictionary.PrimitiveName()}, right)
	}
	if rightDictionary, ok := right.(typesystem.TypedDictionary); ok {
		return o.join(left, typesystem.Primitive{Name: rightDictionary.PrimitiveName()})
	}

	// Literals weaken.
	if literal, ok := left.(typesystem.Literal); ok {
		return o.join(literal.Carrier(), right)
	}
	if literal, ok := right.(typesystem.Literal); ok {
		return o.join(left, literal.Carrier())
	}

	// Parametrics share structure through a common ancestor.
	if joined, ok := o.joinParametrics(left, right); ok {
		return joined
	}

	// Default: the unique least common ancestor, or the structural union.
	candidates := o.leastUpperBound(left, right)
	if len(candidates) == 1 {
		return candidates[0]
	}
	return typesystem.NewUnion(left, right)
}

func (o *Order) joinTuple(tuple typesystem.Tuple, other typesystem.Type) typesystem.Type {
	if otherTuple, ok := other.(typesystem.Tuple); ok {
		switch {
		case !tuple.Unbounded && !otherTuple.Unbounded:
			if len(tuple.Elements) == len(otherTuple.Elements) {
				elements := make([]typesystem.Type, len(tuple.Elements))
				for i := range tuple.Elements {
					elements[i] = o.join(tuple.Elements[i], otherTuple.Elements[i])
				}
				return typesystem.BoundedTuple(elements...)
			}
			return typesystem.NewUnion(tuple, otherTuple)
		case tuple.Unbounded && otherTuple.Unbounded:
			return typesystem.UnboundedTuple(o.join(tuple.Element(), otherTuple.Element()))
		default:
			// Mixed shapes collapse to an unbounded tuple over everything.
			element := o.join(o.joinAll(tuple.Elements), o.joinAll(otherTuple.Elements))
			return typesystem.UnboundedTuple(element)
		}
	}
	// Proxy through tuple[element] for anything nominal.
	return o.join(o.tupleAsParametric(tuple), other)
}

func (o *Order) joinCallables(left, right typesystem.Callable) typesystem.Type {
	if left.Name != "" && left.Name == right.Name {
		return left
	}
	if left.Name == "" && right.Name == "" && len(left.Overloads) == 0 && len(right.Overloads) == 0 {
		if implementation, ok := o.joinImplementations(left.Implementation, right.Implementation); ok {
			return typesystem.Callable{Implementation: implementation}
		}
	}
	return typesystem.NewUnion(left, right)
}

// joinImplementations merges two overloads into one accepting either call
// shape: parameter annotations meet, return annotations join. The result
// inherits the left operand's structure; parameter lists must align in kind.
func (o *Order) joinImplementations(left, right typesystem.Overload) (typesystem.Overload, bool) {
	return o.combineImplementations(left, right, o.meet, o.join)
}

func (o *Order) combineImplementations(
	left, right typesystem.Overload,
	parameterCombine, annotationCombine func(typesystem.Type, typesystem.Type) typesystem.Type,
) (typesystem.Overload, bool) {
	annotation := annotationCombine(left.Annotation, right.Annotation)

	if !left.Defined && !right.Defined {
		return typesystem.Overload{Annotation: annotation}, true
	}
	if !left.Defined || !right.Defined || len(left.Parameters) != len(right.Parameters) {
		return typesystem.Overload{}, false
	}

	parameters := make([]typesystem.Parameter, len(left.Parameters))
	for i := range left.Parameters {
		combined := parameterCombine(
			left.Parameters[i].ParameterAnnotation(),
			right.Parameters[i].ParameterAnnotation())
		switch leftParameter := left.Parameters[i].(type) {
		case typesystem.NamedParameter:
			rightParameter, ok := right.Parameters[i].(typesystem.NamedParameter)
			if !ok || leftParameter.Name != rightParameter.Name || leftParameter.Default != rightParameter.Default {
				return typesystem.Overload{}, false
			}
			parameters[i] = typesystem.NamedParameter{
				Name: leftParameter.Name, Annotation: combined, Default: leftParameter.Default,
			}
		case typesystem.VariableParameter:
			if _, ok := right.Parameters[i].(typesystem.VariableParameter); !ok {
				return typesystem.Overload{}, false
			}
			parameters[i] = typesystem.VariableParameter{Name: leftParameter.Name, Annotation: combined}
		case typesystem.KeywordsParameter:
			if _, ok := right.Parameters[i].(typesystem.KeywordsParameter); !ok {
				return typesystem.Overload{}, false
			}
			parameters[i] = typesystem.KeywordsParameter{Name: leftParameter.Name, Annotation: combined}
		}
	}
	return typesystem.Overload{Annotation: annotation, Parameters: parameters, Defined: true}, true
}

func joinTypedDictionaries(left, right typesystem.TypedDictionary) typesystem.Type {
	mappingFallback := typesystem.Parametric{
		Name:       config.TypingMappingName,
		Parameters: []typesystem.Type{typesystem.Primitive{Name: config.StringName}, typesystem.Any},
	}
	if left.Total != right.Total {
		return mappingFallback
	}
	for _, field := range left.Fields {
		if annotation, ok := right.FieldNamed(field.Name); ok && !typesystem.Equal(annotation, field.Annotation) {
			return mappingFallback
		}
	}
	var common []typesystem.Field
	for _, field := range left.Fields {
		if annotation, ok := right.FieldNamed(field.Name); ok && typesystem.Equal(annotation, field.Annotation) {
			common = append(common, field)
		}
	}
	return typesystem.TypedDictionary{Fields: common, Total: left.Total}
}

// joinParametrics joins two nominal applications through a common primitive
// ancestor, combining parameters under the ancestor's variance. The second
// result is false unless both operands are nominal (primitive or parametric)
// and at least one of them is parametric.
func (o *Order) joinParametrics(left, right typesystem.Type) (typesystem.Type, bool) {
	leftParametric, leftOK := asParametric(left)
	rightParametric, rightOK := asParametric(right)
	if !leftOK || !rightOK {
		return nil, false
	}
	if _, isParametric := left.(typesystem.Parametric); !isParametric {
		if _, isParametric := right.(typesystem.Parametric); !isParametric {
			// Two bare primitives take the default least-upper-bound path.
			return nil, false
		}
	}

	if o.lessOrEqual(left, right) {
		return right, true
	}
	if o.lessOrEqual(right, left) {
		return left, true
	}

	ancestor := o.join(
		typesystem.Primitive{Name: leftParametric.Name},
		typesystem.Primitive{Name: rightParametric.Name})
	ancestorPrimitive, ok := ancestor.(typesystem.Primitive)
	if !ok {
		return typesystem.NewUnion(left, right), true
	}

	leftParameters, leftFound := o.instantiateSuccessorsParameters(left, ancestorPrimitive)
	rightParameters, rightFound := o.instantiateSuccessorsParameters(right, ancestorPrimitive)
	if !leftFound || !rightFound || len(leftParameters) != len(rightParameters) {
		return typesystem.NewUnion(left, right), true
	}

	variables, _ := o.Engine.variables(ancestorPrimitive)
	combined := make([]typesystem.Type, len(leftParameters))
	for i := range leftParameters {
		variance := typesystem.Invariant
		if i < len(variables) {
			if v, ok := variables[i].(typesystem.Variable); ok {
				variance = v.Variance
			}
		}
		switch variance {
		case typesystem.Covariant:
			combined[i] = o.join(leftParameters[i], rightParameters[i])
		case typesystem.Contravariant:
			combined[i] = o.meet(leftParameters[i], rightParameters[i])
		default:
			if typesystem.Equal(leftParameters[i], rightParameters[i]) {
				combined[i] = leftParameters[i]
			} else {
				combined[i] = typesystem.Any
			}
		}
	}
	if len(combined) == 0 {
		return ancestorPrimitive, true
	}
	return typesystem.Parametric{Name: ancestorPrimitive.Name, Parameters: combined}, true
}

func asParametric(annotation typesystem.Type) (typesystem.Parametric, bool) {
	switch annotation := annotation.(type) {
	case typesystem.Parametric:
		return annotation, true
	case typesystem.Primitive:
		return typesystem.Parametric{Name: annotation.Name}, true
	default:
		return typesystem.Parametric{}, false
	}
}

func (o *Order) meet(left, right typesystem.Type) typesystem.Type {
	if typesystem.Equal(left, right) {
		return left
	}

	// Sentinels.
	if typesystem.Equal(left, typesystem.Any) || typesystem.Equal(right, typesystem.Any) {
		return typesystem.Any
	}
	if typesystem.Equal(left, typesystem.Top) {
		return right
	}
	if typesystem.Equal(right, typesystem.Top) {
		return left
	}
	if typesystem.Equal(left, typesystem.Bottom) || typesystem.Equal(right, typesystem.Bottom) {
		return typesystem.Bottom
	}
	if typesystem.Equal(left, typesystem.Undeclared) || typesystem.Equal(right, typesystem.Undeclared) {
		return typesystem.Bottom
	}

	// A variable on either side collapses.
	if _, ok := left.(typesystem.Variable); ok {
		return typesystem.Bottom
	}
	if _, ok := right.(typesystem.Variable); ok {
		return typesystem.Bottom
	}

	// Unions distribute the meet over their branches.
	if union, ok := left.(typesystem.Union); ok {
		return o.meetUnion(union, right)
	}
	if union, ok := right.(typesystem.Union); ok {
		return o.meetUnion(union, left)
	}

	// Optionals.
	if leftOptional, ok := left.(typesystem.Optional); ok {
		if rightOptional, ok := right.(typesystem.Optional); ok {
			return typesystem.Optional{Inner: o.meet(leftOptional.Inner, rightOptional.Inner)}
		}
		return o.meet(leftOptional.Inner, right)
	}
	if rightOptional, ok := right.(typesystem.Optional); ok {
		return o.meet(left, rightOptional.Inner)
	}

	// Tuples.
	if leftTuple, ok := left.(typesystem.Tuple); ok {
		if rightTuple, ok := right.(typesystem.Tuple); ok {
			return o.meetTuples(leftTuple, rightTuple)
		}
	}
	if o.lessOrEqual(left, right) {
		return left
	}
	if o.lessOrEqual(right, left) {
		return right
	}

	// Callables.
	if leftCallable, ok := left.(typesystem.Callable); ok {
		if rightCallable, ok := right.(typesystem.Callable); ok {
			return o.meetCallables(leftCallable, rightCallable)
		}
	}

	// Typed dictionaries.
	if leftDictionary, ok := left.(typesystem.TypedDictionary); ok {
		if rightDictionary, ok := right.(typesystem.TypedDictionary); ok {
			return meetTypedDictionaries(leftDictionary, rightDictionary)
		}
	}

	// Literals weaken.
	if literal, ok := left.(typesystem.Literal); ok {
		return o.meet(literal.Carrier(), right)
	}
	if literal, ok := right.(typesystem.Literal); ok {
		return o.meet(left, literal.Carrier())
	}

	// Parametrics of the same class meet componentwise.
	if leftParametric, ok := left.(typesystem.Parametric); ok {
		if rightParametric, ok := right.(typesystem.Parametric); ok && leftParametric.Name == rightParametric.Name {
			return o.meetParametrics(leftParametric, rightParametric)
		}
	}

	// Default: the unique greatest common descendant, or Bottom.
	candidates := o.greatestLowerBound(left, right)
	if len(candidates) == 1 {
		return candidates[0]
	}
	return typesystem.Bottom
}

func (o *Order) meetUnion(union typesystem.Union, other typesystem.Type) typesystem.Type {
	var met []typesystem.Type
	for _, branch := range union.Alternatives {
		candidate := o.meet(branch, other)
		if !typesystem.Equal(candidate, typesystem.Bottom) {
			met = append(met, candidate)
		}
	}
	if len(met) == 0 {
		return typesystem.Bottom
	}
	return typesystem.NewUnion(met...)
}

func (o *Order) meetTuples(left, right typesystem.Tuple) typesystem.Type {
	switch {
	case !left.Unbounded && !right.Unbounded:
		if len(left.Elements) != len(right.Elements) {
			return typesystem.Bottom
		}
		elements := make([]typesystem.Type, len(left.Elements))
		for i := range left.Elements {
			elements[i] = o.meet(left.Elements[i], right.Elements[i])
		}
		return typesystem.BoundedTuple(elements...)
	case left.Unbounded && right.Unbounded:
		return typesystem.UnboundedTuple(o.meet(left.Element(), right.Element()))
	case !left.Unbounded:
		// A bounded tuple below an unbounded one is the bounded shape.
		if o.lessOrEqual(left, right) {
			return left
		}
		return typesystem.Bottom
	default:
		if o.lessOrEqual(right, left) {
			return right
		}
		return typesystem.Bottom
	}
}

func (o *Order) meetCallables(left, right typesystem.Callable) typesystem.Type {
	if left.Name != "" && left.Name == right.Name {
		return left
	}
	if left.Name == "" && right.Name == "" && len(left.Overloads) == 0 && len(right.Overloads) == 0 {
		// Roles swap against the join: parameters widen, returns narrow.
		if implementation, ok := o.combineImplementations(
			left.Implementation, right.Implementation, o.join, o.meet); ok {
			return typesystem.Callable{Implementation: implementation}
		}
	}
	return typesystem.Bottom
}

func meetTypedDictionaries(left, right typesystem.TypedDictionary) typesystem.Type {
	if left.Total != right.Total {
		return typesystem.Bottom
	}
	fields := append([]typesystem.Field{}, left.Fields...)
	for _, field := range right.Fields {
		if annotation, ok := left.FieldNamed(field.Name); ok {
			if !typesystem.Equal(annotation, field.Annotation) {
				return typesystem.Bottom
			}
			continue
		}
		fields = append(fields, field)
	}
	return typesystem.TypedDictionary{Fields: fields, Total: left.Total}
}

func (o *Order) meetParametrics(left, right typesystem.Parametric) typesystem.Type {
	if len(left.Parameters) != len(right.Parameters) {
		return typesystem.Bottom
	}
	variables, _ := o.Engine.variables(typesystem.Primitive{Name: left.Name})
	parameters := make([]typesystem.Type, len(left.Parameters))
	for i := range left.Parameters {
		variance := typesystem.Invariant
		if i < len(variables) {
			if v, ok := variables[i].(typesystem.Variable); ok {
				variance = v.Variance
			}
		}
		switch variance {
		case typesystem.Covariant:
			parameters[i] = o.meet(left.Parameters[i], right.Parameters[i])
		case typesystem.Contravariant:
			parameters[i] = o.join(left.Parameters[i], right.Parameters[i])
		default:
			if !typesystem.Equal(left.Parameters[i], right.Parameters[i]) {
				return typesystem.Bottom
			}
			parameters[i] = left.Parameters[i]
		}
	}
	return typesystem.Parametric{Name: left.Name, Parameters: parameters}
}

// leastUpperBound expands both operands' ancestor frontiers level by level
// and returns the minimal elements of the first non-empty intersection.
func (o *Order) leastUpperBound(left, right typesystem.Type) []typesystem.Type {
	return o.commonBound(left, right, rawSuccessors(o.Engine))
}

// greatestLowerBound is the dual search through descendant frontiers.
func (o *Order) greatestLowerBound(left, right typesystem.Type) []typesystem.Type {
	return o.commonBound(left, right, rawPredecessors(o.Engine))
}

func (o *Order) commonBound(left, right typesystem.Type, expand func(step) []step) []typesystem.Type {
	leftIndex := o.Engine.indexOf(boundLookupKey(left))
	rightIndex := o.Engine.indexOf(boundLookupKey(right))

	leftVisited := set.New[int](16)
	leftVisited.Insert(leftIndex)
	rightVisited := set.New[int](16)
	rightVisited.Insert(rightIndex)
	leftFrontier := []int{leftIndex}
	rightFrontier := []int{rightIndex}

	for {
		common := leftVisited.Intersect(rightVisited).Slice()
		if len(common) > 0 {
			return o.minimalAnnotations(common, expand)
		}
		if len(leftFrontier) == 0 && len(rightFrontier) == 0 {
			return nil
		}
		leftFrontier = advanceFrontier(leftFrontier, leftVisited, expand)
		rightFrontier = advanceFrontier(rightFrontier, rightVisited, expand)
	}
}

// boundLookupKey picks the graph key the ancestor search runs on: the
// annotation's primitive when it has one, otherwise the annotation itself.
func boundLookupKey(annotation typesystem.Type) typesystem.Type {
	if name, ok := typesystem.PrimitiveName(annotation); ok {
		return typesystem.Primitive{Name: name}
	}
	return annotation
}

func advanceFrontier(frontier []int, visited *set.Set[int], expand func(step) []step) []int {
	var next []int
	for _, index := range frontier {
		for _, successor := range expand(step{index: index}) {
			if visited.Insert(successor.index) {
				next = append(next, successor.index)
			}
		}
	}
	return next
}

// minimalAnnotations drops candidates another candidate already reaches.
func (o *Order) minimalAnnotations(indices []int, expand func(step) []step) []typesystem.Type {
	minimal := []typesystem.Type{}
	for _, candidate := range indices {
		dominated := false
		for _, other := range indices {
			if other == candidate {
				continue
			}
			if reachableThrough(other, candidate, expand) {
				dominated = true
				break
			}
		}
		if !dominated {
			minimal = append(minimal, o.Engine.annotation(candidate))
		}
	}
	return minimal
}

func reachableThrough(from, to int, expand func(step) []step) bool {
	found := false
	breadthFirst(step{index: from}, expand, func(current step) bool {
		if current.index == to && current.index != from {
			found = true
		}
		return found
	})
	return found
}
