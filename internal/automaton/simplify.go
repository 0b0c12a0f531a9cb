// Package automaton implements C3 (automaton nodes), C4 (the builder),
// C5 (the simplifier), and C6 (the minimizer): everything between a
// binder's ordered bound arms and a minimized decision DAG.
package automaton

import (
	"matchc/internal/oracle"
	"matchc/internal/pattern"
)

// RemoveFetch is C5's fetch-action rewrite: p with any subpattern
// structurally equal to f replaced by True, propagated through And/Or
// (spec §4.4).
func RemoveFetch(p, f *pattern.Pattern) *pattern.Pattern {
	if pattern.Equal(p, f) {
		return pattern.True
	}
	switch p.Kind {
	case pattern.KAnd:
		subs := make([]*pattern.Pattern, len(p.Subs))
		for i, s := range p.Subs {
			subs[i] = RemoveFetch(s, f)
		}
		return simplifyAnd(subs)
	case pattern.KOr:
		subs := make([]*pattern.Pattern, len(p.Subs))
		for i, s := range p.Subs {
			subs[i] = RemoveFetch(s, f)
		}
		return simplifyOr(subs)
	default:
		return p
	}
}

// RewriteTest is C5's test-action rewrite: given that test a evaluated to
// sense, rewrite p accordingly (spec §4.4). o is the oracle consulted for
// type-test refinement between two TypeTests sharing an input.
func RewriteTest(p, a *pattern.Pattern, sense bool, o oracle.Oracle) *pattern.Pattern {
	if pattern.Equal(p, a) {
		if sense {
			return pattern.True
		}
		return pattern.False
	}

	if p.Kind == pattern.KTypeTest && a.Kind == pattern.KTypeTest && p.Input == a.Input {
		return refineTypeTest(p, a, sense, o)
	}

	if p.Kind == pattern.KWhereTest && a.Kind == pattern.KWhereTest && p.Input == a.Input {
		if (a.Inverted == p.Inverted) == sense {
			return pattern.True
		}
		return pattern.False
	}

	switch p.Kind {
	case pattern.KAnd:
		subs := make([]*pattern.Pattern, len(p.Subs))
		for i, s := range p.Subs {
			subs[i] = RewriteTest(s, a, sense, o)
		}
		return simplifyAnd(subs)
	case pattern.KOr:
		subs := make([]*pattern.Pattern, len(p.Subs))
		for i, s := range p.Subs {
			subs[i] = RewriteTest(s, a, sense, o)
		}
		return simplifyOr(subs)
	default:
		return p
	}
}

// refineTypeTest implements spec §4.4's "Type-test refinement": two
// TypeTests sharing an input let the oracle's subtype lattice resolve one
// in terms of the other without waiting for them to be syntactically
// identical.
func refineTypeTest(p, a *pattern.Pattern, sense bool, o oracle.Oracle) *pattern.Pattern {
	if sense {
		if o.Subtype(a.Type, p.Type) {
			return pattern.True
		}
		if o.Subtype(p.Type, a.Type) {
			return p
		}
		if o.Intersect(a.Type, p.Type) == oracle.None {
			return pattern.False
		}
		return p
	}
	if o.Subtype(p.Type, a.Type) {
		return pattern.False
	}
	return p
}

func simplifyAnd(subs []*pattern.Pattern) *pattern.Pattern {
	out := make([]*pattern.Pattern, 0, len(subs))
	for _, s := range subs {
		if s.Kind == pattern.KFalse {
			return pattern.False
		}
		if s.Kind == pattern.KTrue {
			continue
		}
		out = append(out, s)
	}
	switch len(out) {
	case 0:
		return pattern.True
	case 1:
		return out[0]
	default:
		return pattern.And(out...)
	}
}

func simplifyOr(subs []*pattern.Pattern) *pattern.Pattern {
	out := make([]*pattern.Pattern, 0, len(subs))
	for _, s := range subs {
		if s.Kind == pattern.KTrue {
			return pattern.True
		}
		if s.Kind == pattern.KFalse {
			continue
		}
		out = append(out, s)
	}
	switch len(out) {
	case 0:
		return pattern.False
	case 1:
		return out[0]
	default:
		return pattern.Or(out...)
	}
}
