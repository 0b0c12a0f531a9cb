package oracle

import (
	"matchc/internal/surface"
	"matchc/matcherr"
)

// TypeInfo is the fixture data StaticOracle answers queries from: one
// constructor's field layout and place in the supertype lattice. It plays
// the role gala's TypeMetadata (internal/transpiler/types.go) plays for the
// real transformer, trimmed to what the core's oracle interface needs.
type TypeInfo struct {
	Fields     []string
	FieldTypes map[string]string // field name -> registered type name, "" or missing means Any
	Supers     []string          // immediate supertype names; transitively closed by Subtype
}

// StaticOracle is a fixed, pre-registered implementation of Oracle. It is
// the reference oracle used by tests and by the cmd/matchc demo: the
// binder's whole contract with its oracle is four pure queries, so a table
// of TypeInfo is enough to drive it without any real type-checker behind
// it.
type StaticOracle struct {
	types map[string]TypeInfo
}

// NewStaticOracle builds a StaticOracle from name->TypeInfo fixtures.
func NewStaticOracle(types map[string]TypeInfo) *StaticOracle {
	return &StaticOracle{types: types}
}

func (o *StaticOracle) ResolveType(expr surface.TypeExpr, loc matcherr.Location) (Type, error) {
	name := nameOfTypeExpr(expr)
	if name == "" {
		return nil, matcherr.NewAt(matcherr.KindUnresolvedType, loc, "type expression has no resolvable name")
	}
	if name == "any" {
		return Any, nil
	}
	if _, ok := o.types[name]; !ok {
		return nil, matcherr.NewAtf(matcherr.KindUnresolvedType, loc, "type %q is not defined", name)
	}
	return basicType(name), nil
}

func (o *StaticOracle) FieldNames(t Type) []string {
	info, ok := o.types[t.Name()]
	if !ok {
		return nil
	}
	return info.Fields
}

func (o *StaticOracle) FieldType(t Type, name string) Type {
	info, ok := o.types[t.Name()]
	if !ok {
		return Any
	}
	if tn, ok := info.FieldTypes[name]; ok && tn != "" {
		return basicType(tn)
	}
	return Any
}

func (o *StaticOracle) Subtype(a, b Type) bool {
	if a.Name() == b.Name() || b == Any {
		return true
	}
	seen := map[string]bool{}
	var walk func(name string) bool
	walk = func(name string) bool {
		if name == b.Name() {
			return true
		}
		if seen[name] {
			return false
		}
		seen[name] = true
		info, ok := o.types[name]
		if !ok {
			return false
		}
		for _, s := range info.Supers {
			if walk(s) {
				return true
			}
		}
		return false
	}
	return walk(a.Name())
}

func (o *StaticOracle) Intersect(a, b Type) Type {
	if a.Name() == b.Name() {
		return a
	}
	if a == Any {
		return b
	}
	if b == Any {
		return a
	}
	if o.Subtype(a, b) {
		return a
	}
	if o.Subtype(b, a) {
		return b
	}
	return None
}

// nameOfTypeExpr extracts a dotted name from the simple Ident/SelectorExpr
// shapes a `::T` type expression is built from; anything fancier isn't a
// resolvable type name and ResolveType reports UnresolvedType.
func nameOfTypeExpr(expr surface.TypeExpr) string {
	if ge, ok := expr.Expr.(surface.GoExpr); ok {
		return goExprName(ge.Expr)
	}
	return ""
}
