package binder

import (
	"go/ast"
	"go/token"

	"matchc/internal/pattern"
	"matchc/internal/surface"
)

// shredWhere is shred-where from spec §4.2.2: it decomposes a guard's
// boolean structure (!, &&, ||) via De Morgan so each atomic condition
// becomes its own WhereTest, letting the simplifier (C5) cancel a
// previously-tested atomic guard instead of only ever seeing one opaque
// expression per arm. Boolean structure is only visible when the guard is
// a surface.GoExpr wrapping a go/ast boolean expression; any other
// HostExpr implementation is treated as a single atomic guard, which is
// still correct, just less shareable.
func (b *Binder) shredWhere(g surface.HostExpr, inverted bool, input pattern.Temp, bindings pattern.Bindings) *pattern.Pattern {
	ge, ok := g.(surface.GoExpr)
	if !ok {
		return b.atomicGuard(g, inverted, input, bindings)
	}

	switch e := ge.Expr.(type) {
	case *ast.UnaryExpr:
		if e.Op == token.NOT {
			return b.shredWhere(subExpr(ge, e.X), !inverted, input, bindings)
		}
	case *ast.ParenExpr:
		return b.shredWhere(subExpr(ge, e.X), inverted, input, bindings)
	case *ast.BinaryExpr:
		if e.Op == token.LAND || e.Op == token.LOR {
			left := b.shredWhere(subExpr(ge, e.X), inverted, input, bindings)
			right := b.shredWhere(subExpr(ge, e.Y), inverted, input, bindings)
			// De Morgan: inverting a conjunction yields a disjunction and
			// vice versa; the top-level sense combines with that flip.
			useOr := inverted == (e.Op == token.LAND)
			if useOr {
				return pattern.Or(left, right)
			}
			return pattern.And(left, right)
		}
	}
	return b.atomicGuard(ge, inverted, input, bindings)
}

// atomicGuard synthesizes the FetchExpression+WhereTest pair for a guard
// condition that can't be decomposed further.
func (b *Binder) atomicGuard(g surface.HostExpr, inverted bool, input pattern.Temp, bindings pattern.Bindings) *pattern.Pattern {
	rewritten, captured := rewriteToTemps(bindings, g)
	fetch := &pattern.Pattern{Kind: pattern.KFetchExpression, Input: input, Value: rewritten, Captured: captured}
	fetchTemp := b.intern(fetch)
	test := &pattern.Pattern{Kind: pattern.KWhereTest, Input: fetchTemp, Inverted: inverted}
	return pattern.And(fetch, test)
}

// subExpr rewraps a go/ast sub-expression of e as a GoExpr, narrowing
// Free to only the names that actually occur within sub.
func subExpr(e surface.GoExpr, sub ast.Expr) surface.GoExpr {
	present := identsIn(sub)
	free := make([]string, 0, len(e.Free))
	for _, n := range e.Free {
		if present[n] {
			free = append(free, n)
		}
	}
	return surface.GoExpr{Expr: sub, Free: free}
}

func identsIn(e ast.Expr) map[string]bool {
	found := make(map[string]bool)
	ast.Inspect(e, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			found[id.Name] = true
		}
		return true
	})
	return found
}

// rewriteToTemps substitutes every free variable of h that is currently
// bound to a temporary with a reference to that temporary, and returns
// the bindings it actually captured (spec §4.2's "Pattern-variable
// references inside interpolations and guards are rewritten to their
// temporaries"). Free names with no binding are left untouched: they
// refer to ordinary host-scope identifiers, not pattern variables.
func rewriteToTemps(bindings pattern.Bindings, h surface.HostExpr) (surface.HostExpr, pattern.Bindings) {
	subst := make(map[string]string)
	captured := pattern.Empty
	for _, name := range h.FreeVars() {
		if t, ok := bindings.Lookup(name); ok {
			subst[name] = string(t)
			captured = captured.With(name, t)
		}
	}
	if len(subst) == 0 {
		return h, captured
	}
	return h.Rewrite(subst), captured
}
