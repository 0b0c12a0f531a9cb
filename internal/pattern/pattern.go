// Package pattern implements the bound-pattern algebra (C1): the tagged
// variant tree the binder lowers surface patterns into, and the only
// vocabulary the automaton builder, simplifier, and minimizer operate on
// from here on (spec §3, §4.1). A bound pattern no longer mentions surface
// syntax at all — only temporaries, tests against them, and boolean
// combinations of tests.
package pattern

import (
	"fmt"
	"strings"

	"matchc/internal/oracle"
	"matchc/internal/surface"
)

// Kind tags which test or combinator a Pattern node represents.
type Kind int

const (
	KTrue             Kind = iota // always succeeds, binds nothing
	KFalse                        // always fails
	KEqualValueTest               // Input == Value
	KTypeTest                     // Input is-a Type (or, if Inverted, is-not-a)
	KRelationalTest               // Input >= Const (RelGE) or Input == Const (RelEQ), e.g. length/range checks
	KWhereTest                    // read the guard's value from Input (a FetchExpression's Result); true/false per Inverted
	KFetchField                   // bind Result = Input.Field (FieldType is Field's declared type)
	KFetchIndex                   // bind Result = Input[Index]
	KFetchRange                   // bind Result = Input[First : len(Input)-FromEnd] (sequence rest-binding)
	KFetchLength                  // bind Result = len(Input)
	KFetchExpression              // bind Result = Value (opaque host expression, used by interpolation and phi-merge)
	KAnd                          // all of Subs must hold, left to right, each may depend on a prior fetch's Result
	KOr                           // first of Subs to hold wins; each branch independent (phi-merged if needed)
)

func (k Kind) String() string {
	switch k {
	case KTrue:
		return "True"
	case KFalse:
		return "False"
	case KEqualValueTest:
		return "EqualValueTest"
	case KTypeTest:
		return "TypeTest"
	case KRelationalTest:
		return "RelationalTest"
	case KWhereTest:
		return "WhereTest"
	case KFetchField:
		return "FetchField"
	case KFetchIndex:
		return "FetchIndex"
	case KFetchRange:
		return "FetchRange"
	case KFetchLength:
		return "FetchLength"
	case KFetchExpression:
		return "FetchExpression"
	case KAnd:
		return "And"
	case KOr:
		return "Or"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// RelOp selects which relation a RelationalTest checks.
type RelOp int

const (
	RelGE RelOp = iota // Input >= Const, used for "at least N elements" / "length >= N"
	RelEQ              // Input == Const, used for exact-length and literal-count checks
)

// Pattern is one node of the bound-pattern algebra. Which fields are
// meaningful depends on Kind; this mirrors the single-struct, Kind-tagged
// style surface.Pattern already uses, itself grounded on how gala's own
// transformer threads one context type through many grammar alternatives.
type Pattern struct {
	Kind Kind

	// EqualValueTest, TypeTest, RelationalTest, WhereTest, every Fetch*:
	// the temporary the test reads or the fetch's source.
	Input Temp

	// EqualValueTest: the value to compare Input against.
	// FetchExpression: the expression to evaluate and bind to Result.
	// WhereTest leaves Value unset: the guard expression lives on the
	// FetchExpression whose Result is the WhereTest's Input.
	Value surface.HostExpr

	// EqualValueTest, FetchExpression: the pattern variables this node's
	// Value expression references, recorded when the node is built; no
	// later stage reads it.
	// Excluded from Equal/Hash: two occurrences of the same expression
	// capture the same variables by construction.
	Captured Bindings

	// TypeTest
	Type     oracle.Type
	Inverted bool // WhereTest, TypeTest: true tests the negated sense

	// RelationalTest
	Op    RelOp
	Const int

	// FetchField
	Field     string
	FieldType oracle.Type

	// FetchIndex
	Index int

	// FetchRange
	First   int // elements to skip from the front
	FromEnd int // elements to drop off the back ("mid..." followed by N fixed trailing elements)

	// Every Fetch*: the temporary the fetched value is bound to.
	Result Temp

	// FetchExpression: non-empty when this fetch was synthesized by
	// phi-merging an Or whose branches bind the same variable to different
	// temporaries (spec §4.2.1); used only for diagnostics/debugging, never
	// compared.
	PhiOf string

	// And, Or
	Subs []*Pattern
}

// True and False are the two terminal leaves; every build site can share
// these since they carry no data.
var True = &Pattern{Kind: KTrue}
var False = &Pattern{Kind: KFalse}

// And builds a KAnd node out of subs, flattening any nested KAnd so the
// automaton builder always sees a single flat conjunction list (mirrors
// how gala's pattern-combination logic in patterns.go merges sequential
// checks rather than nesting them).
func And(subs ...*Pattern) *Pattern {
	flat := make([]*Pattern, 0, len(subs))
	for _, s := range subs {
		if s.Kind == KAnd {
			flat = append(flat, s.Subs...)
		} else {
			flat = append(flat, s)
		}
	}
	return &Pattern{Kind: KAnd, Subs: flat}
}

// Or builds a KOr node out of subs, flattening nested KOr the same way
// And flattens KAnd.
func Or(subs ...*Pattern) *Pattern {
	flat := make([]*Pattern, 0, len(subs))
	for _, s := range subs {
		if s.Kind == KOr {
			flat = append(flat, s.Subs...)
		} else {
			flat = append(flat, s)
		}
	}
	return &Pattern{Kind: KOr, Subs: flat}
}

// IsIrrefutable reports whether p is guaranteed to succeed: True itself,
// or an And/Or all of whose subpatterns are irrefutable (spec §4.1). A
// pattern the binder marks irrefutable lets the automaton builder skip
// emitting a test for it entirely.
func IsIrrefutable(p *Pattern) bool {
	switch p.Kind {
	case KTrue:
		return true
	case KAnd, KOr:
		for _, s := range p.Subs {
			if !IsIrrefutable(s) {
				return false
			}
		}
		return len(p.Subs) > 0 || p.Kind == KAnd
	default:
		return false
	}
}

// Equal reports structural equality between a and b, ignoring any source
// location carried indirectly through Value's HostExpr identity — two
// fetches of the same field from the same temporary are equal regardless
// of which arm's syntax produced them, which is exactly what invariant I1
// requires for temp interning.
func Equal(a, b *Pattern) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KTrue, KFalse:
		return true
	case KEqualValueTest:
		return a.Input == b.Input && hostKey(a.Value) == hostKey(b.Value)
	case KTypeTest:
		return a.Input == b.Input && a.Inverted == b.Inverted && sameType(a.Type, b.Type)
	case KRelationalTest:
		return a.Input == b.Input && a.Op == b.Op && a.Const == b.Const
	case KWhereTest:
		return a.Input == b.Input && a.Inverted == b.Inverted && hostKey(a.Value) == hostKey(b.Value)
	case KFetchField:
		return a.Input == b.Input && a.Field == b.Field
	case KFetchIndex:
		return a.Input == b.Input && a.Index == b.Index
	case KFetchRange:
		return a.Input == b.Input && a.First == b.First && a.FromEnd == b.FromEnd
	case KFetchLength:
		return a.Input == b.Input
	case KFetchExpression:
		return a.Input == b.Input && hostKey(a.Value) == hostKey(b.Value)
	case KAnd, KOr:
		if len(a.Subs) != len(b.Subs) {
			return false
		}
		for i := range a.Subs {
			if !Equal(a.Subs[i], b.Subs[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Hash returns a string digest such that Equal(a, b) implies Hash(a) ==
// Hash(b); used by the binder's fetch-interning cache and by the
// automaton builder's arm-list dedup (spec §4.2, §4.3) as the map key;
// those maps compare the digest strings alone and do not call Equal.
func Hash(p *Pattern) string {
	var sb strings.Builder
	hashInto(&sb, p)
	return sb.String()
}

func hashInto(sb *strings.Builder, p *Pattern) {
	if p == nil {
		sb.WriteString("<nil>")
		return
	}
	fmt.Fprintf(sb, "%s(", p.Kind)
	switch p.Kind {
	case KTrue, KFalse:
	case KEqualValueTest:
		fmt.Fprintf(sb, "%s,%s", p.Input, hostKey(p.Value))
	case KTypeTest:
		fmt.Fprintf(sb, "%s,%v,%s", p.Input, p.Inverted, typeKey(p.Type))
	case KRelationalTest:
		fmt.Fprintf(sb, "%s,%d,%d", p.Input, p.Op, p.Const)
	case KWhereTest:
		fmt.Fprintf(sb, "%s,%v,%s", p.Input, p.Inverted, hostKey(p.Value))
	case KFetchField:
		fmt.Fprintf(sb, "%s,%s", p.Input, p.Field)
	case KFetchIndex:
		fmt.Fprintf(sb, "%s,%d", p.Input, p.Index)
	case KFetchRange:
		fmt.Fprintf(sb, "%s,%d,%d", p.Input, p.First, p.FromEnd)
	case KFetchLength:
		fmt.Fprintf(sb, "%s", p.Input)
	case KFetchExpression:
		fmt.Fprintf(sb, "%s,%s", p.Input, hostKey(p.Value))
	case KAnd, KOr:
		for i, s := range p.Subs {
			if i > 0 {
				sb.WriteByte(';')
			}
			hashInto(sb, s)
		}
	}
	sb.WriteByte(')')
}

func hostKey(h surface.HostExpr) string {
	if h == nil {
		return ""
	}
	return h.Key()
}

func typeKey(t oracle.Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

func sameType(a, b oracle.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// IsFetch reports whether p produces a Result binding rather than a
// boolean test, used by the automaton builder to tell a fetch action from
// a test action when it picks a node's leftmost leaf.
func IsFetch(p *Pattern) bool {
	switch p.Kind {
	case KFetchField, KFetchIndex, KFetchRange, KFetchLength, KFetchExpression:
		return true
	default:
		return false
	}
}
