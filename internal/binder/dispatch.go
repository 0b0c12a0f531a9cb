package binder

import (
	"matchc/internal/oracle"
	"matchc/internal/pattern"
	"matchc/internal/surface"
	"matchc/matcherr"
)

func (b *Binder) bindLiteral(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings) (*pattern.Pattern, pattern.Bindings, error) {
	value, ok := p.LitValue.(surface.HostExpr)
	if !ok {
		value = literalHostExpr(p.LitValue)
	}
	test := &pattern.Pattern{Kind: pattern.KEqualValueTest, Input: input, Value: value}
	return test, bindings, nil
}

func (b *Binder) bindInterp(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings) (*pattern.Pattern, pattern.Bindings, error) {
	rewritten, captured := rewriteToTemps(bindings, p.Expr)
	test := &pattern.Pattern{Kind: pattern.KEqualValueTest, Input: input, Value: rewritten, Captured: captured}
	return test, bindings, nil
}

// bindCall lowers a constructor/extractor pattern: a type test against
// the callee followed by one shared fetch-and-recurse pair per field,
// addressed either positionally (oracle field order) or by name (spec
// §4.2's Ctor rows). Splats inside call arguments aren't supported; the
// host parser is expected to hand rest-element extraction to us as a
// Sequence pattern instead (surface.Pattern's Elements form), which is
// where FetchRange/FetchIndex with negative indices are implemented.
func (b *Binder) bindCall(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings) (*pattern.Pattern, pattern.Bindings, error) {
	named, positional := 0, 0
	for _, a := range p.Args {
		if a.Pattern != nil && a.Pattern.Kind == surface.Splat {
			return nil, pattern.Empty, matcherr.NewAt(matcherr.KindUnrecognizedPattern, p.Loc,
				"rest pattern is not supported inside a constructor call, use a sequence pattern instead")
		}
		if a.Name != "" {
			named++
		} else {
			positional++
		}
	}
	if named > 0 && positional > 0 {
		return nil, pattern.Empty, matcherr.NewAt(matcherr.KindMixedFieldStyle, p.Loc,
			"constructor pattern mixes named and positional arguments")
	}

	t, err := b.resolveCalleeType(p, input)
	if err != nil {
		return nil, pattern.Empty, err
	}

	fields := b.Oracle.FieldNames(t)
	test := &pattern.Pattern{Kind: pattern.KTypeTest, Input: input, Type: t}
	subs := []*pattern.Pattern{test}

	if named > 0 {
		seen := make(map[string]bool, named)
		for _, a := range p.Args {
			if seen[a.Name] {
				return nil, pattern.Empty, matcherr.NewAtf(matcherr.KindDuplicateNamedField, p.Loc,
					"field %q bound more than once", a.Name)
			}
			seen[a.Name] = true
			if !containsName(fields, a.Name) {
				return nil, pattern.Empty, matcherr.NewAtf(matcherr.KindUnknownField, p.Loc,
					"type %q has no field %q", t.Name(), a.Name)
			}
			fieldType := b.Oracle.FieldType(t, a.Name)
			fetchTemp, fetchPattern := b.internFetchField(input, a.Name, fieldType)
			sub, newBindings, err := b.Bind(a.Pattern, fetchTemp, bindings)
			if err != nil {
				return nil, pattern.Empty, err
			}
			bindings = newBindings
			subs = append(subs, fetchPattern, sub)
		}
		return pattern.And(subs...), bindings, nil
	}

	if positional != len(fields) {
		return nil, pattern.Empty, matcherr.NewAtf(matcherr.KindWrongFieldCount, p.Loc,
			"constructor %q expects %d field(s), got %d", t.Name(), len(fields), positional)
	}
	for i, a := range p.Args {
		fieldType := b.Oracle.FieldType(t, fields[i])
		fetchTemp, fetchPattern := b.internFetchField(input, fields[i], fieldType)
		sub, newBindings, err := b.Bind(a.Pattern, fetchTemp, bindings)
		if err != nil {
			return nil, pattern.Empty, err
		}
		bindings = newBindings
		subs = append(subs, fetchPattern, sub)
	}
	return pattern.And(subs...), bindings, nil
}

func (b *Binder) resolveCalleeType(p *surface.Pattern, _ pattern.Temp) (oracle.Type, error) {
	typeExpr := surface.TypeExpr{Expr: surface.GoExpr{Expr: identAST(p.Callee)}, Loc: p.Loc}
	for _, ta := range p.TypeArgs {
		_ = ta // type arguments are not passed to the oracle; only the callee name is resolved
	}
	t, err := b.Oracle.ResolveType(typeExpr, p.Loc)
	if err != nil {
		return nil, err
	}
	b.recordAssertion(t.Name(), t)
	return t, nil
}

func (b *Binder) internFetchField(input pattern.Temp, field string, fieldType oracle.Type) (pattern.Temp, *pattern.Pattern) {
	fetch := &pattern.Pattern{Kind: pattern.KFetchField, Input: input, Field: field, FieldType: fieldType}
	t := b.intern(fetch)
	return t, fetch
}

// bindSequenceLike lowers a Tuple or Sequence pattern: a type test, a
// length/arity test, and one fetch-and-recurse pair per element, with at
// most one splat element absorbing the middle (spec §4.2's tuple/array
// row).
func (b *Binder) bindSequenceLike(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings, shapeType oracle.Type) (*pattern.Pattern, pattern.Bindings, error) {
	splatAt := -1
	for i, el := range p.Elements {
		if el.Kind == surface.Splat {
			if splatAt != -1 {
				return nil, pattern.Empty, matcherr.NewAt(matcherr.KindMultipleSplats, p.Loc,
					"at most one rest pattern is allowed")
			}
			splatAt = i
		}
	}

	n := len(p.Elements)
	lengthFetch := &pattern.Pattern{Kind: pattern.KFetchLength, Input: input}
	lengthTemp := b.intern(lengthFetch)

	var lengthTest *pattern.Pattern
	if splatAt == -1 {
		lengthTest = &pattern.Pattern{Kind: pattern.KRelationalTest, Input: lengthTemp, Op: pattern.RelEQ, Const: n}
	} else {
		lengthTest = &pattern.Pattern{Kind: pattern.KRelationalTest, Input: lengthTemp, Op: pattern.RelGE, Const: n - 1}
	}

	typeTest := &pattern.Pattern{Kind: pattern.KTypeTest, Input: input, Type: shapeType}
	subs := []*pattern.Pattern{typeTest, lengthFetch, lengthTest}

	before := p.Elements
	after := []*surface.Pattern(nil)
	if splatAt != -1 {
		before = p.Elements[:splatAt]
		after = p.Elements[splatAt+1:]
	}

	for i, el := range before {
		idxFetch := &pattern.Pattern{Kind: pattern.KFetchIndex, Input: input, Index: i + 1}
		idxTemp := b.intern(idxFetch)
		sub, newBindings, err := b.Bind(el, idxTemp, bindings)
		if err != nil {
			return nil, pattern.Empty, err
		}
		bindings = newBindings
		subs = append(subs, idxFetch, sub)
	}

	if splatAt != -1 {
		splat := p.Elements[splatAt]
		if splat.SplatName != "" {
			rangeFetch := &pattern.Pattern{Kind: pattern.KFetchRange, Input: input, First: len(before), FromEnd: len(after)}
			rangeTemp := b.intern(rangeFetch)
			bindings = bindings.With(splat.SplatName, rangeTemp)
			subs = append(subs, rangeFetch)
		}
	}

	for j, el := range after {
		idxFetch := &pattern.Pattern{Kind: pattern.KFetchIndex, Input: input, Index: -(len(after) - j)}
		idxTemp := b.intern(idxFetch)
		sub, newBindings, err := b.Bind(el, idxTemp, bindings)
		if err != nil {
			return nil, pattern.Empty, err
		}
		bindings = newBindings
		subs = append(subs, idxFetch, sub)
	}

	return pattern.And(subs...), bindings, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
