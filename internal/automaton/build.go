package automaton

import (
	"matchc/internal/oracle"
	"matchc/internal/pattern"
	"matchc/matcherr"
)

// Builder runs C4: from an ordered list of bound arms it builds the
// reachable decision automaton, memoizing nodes by arm-list identity and
// recording which arms were ever chosen as a success action so it can
// warn about the ones that weren't (spec §4.3, P5).
type Builder struct {
	Oracle   oracle.Oracle
	nodes    map[string]*Node
	pending  []*Node
	reached  map[int]bool
	Warnings []matcherr.UnreachableArm
}

// NewBuilder returns a Builder that will consult o for type-test
// refinement while simplifying arms (spec §4.4).
func NewBuilder(o oracle.Oracle) *Builder {
	return &Builder{
		Oracle:  o,
		nodes:   make(map[string]*Node),
		reached: make(map[int]bool),
	}
}

// Build constructs and returns the entry node of the automaton for arms,
// then appends an UnreachableArm warning to b.Warnings for every arm that
// was never reached as a success action.
func (b *Builder) Build(arms []ArmResult) *Node {
	entry := b.intern(arms)
	for len(b.pending) > 0 {
		n := b.pending[0]
		b.pending = b.pending[1:]
		if n.ActionKind == ActionNone {
			b.step(n)
		}
	}
	for _, a := range arms {
		if !b.reached[a.Index] {
			loc := matcherr.Location{}
			if a.Arm != nil {
				loc = a.Arm.Loc
			}
			b.Warnings = append(b.Warnings, matcherr.UnreachableArm{ArmIndex: a.Index, Loc: loc})
		}
	}
	return entry
}

// intern returns the existing node for arms if one was already built
// (pointer-equal per C3's dedup rule), or creates and schedules a new
// one.
func (b *Builder) intern(arms []ArmResult) *Node {
	key := armListKey(arms)
	if n, ok := b.nodes[key]; ok {
		return n
	}
	n := &Node{Arms: arms}
	b.nodes[key] = n
	b.pending = append(b.pending, n)
	return n
}

// step computes n's action and successors per spec §4.3.
func (b *Builder) step(n *Node) {
	if len(n.Arms) == 0 {
		n.ActionKind = ActionFailure
		return
	}

	first := n.Arms[0]
	if pattern.IsIrrefutable(first.Bound) {
		n.ActionKind = ActionSuccess
		arm := first
		n.SuccessArm = &arm
		b.reached[first.Index] = true
		return
	}

	leaf := leftmostLeaf(first.Bound)
	if pattern.IsFetch(leaf) {
		n.ActionKind = ActionFetch
		n.Test = leaf
		succ := b.intern(rewriteArmsFetch(n.Arms, leaf))
		n.Successors = []*Node{succ}
		return
	}

	n.ActionKind = ActionTest
	n.Test = leaf
	trueNode := b.intern(rewriteArmsTest(n.Arms, leaf, true, b.Oracle))
	falseNode := b.intern(rewriteArmsTest(n.Arms, leaf, false, b.Oracle))
	n.Successors = []*Node{trueNode, falseNode}
}

// leftmostLeaf walks into subpattern 1 of a nested And/Or until it finds
// a non-combinator leaf, opportunistically skipping an absorbable True
// (inside an And) or False (inside an Or) at the front so the action
// chosen is always a fetch or test (spec §4.3).
func leftmostLeaf(p *pattern.Pattern) *pattern.Pattern {
	for {
		switch p.Kind {
		case pattern.KAnd:
			if len(p.Subs) == 0 {
				return pattern.True
			}
			if p.Subs[0].Kind == pattern.KTrue && len(p.Subs) > 1 {
				p = simplifyAnd(p.Subs[1:])
				continue
			}
			p = p.Subs[0]
		case pattern.KOr:
			if len(p.Subs) == 0 {
				return pattern.False
			}
			if p.Subs[0].Kind == pattern.KFalse && len(p.Subs) > 1 {
				p = simplifyOr(p.Subs[1:])
				continue
			}
			p = p.Subs[0]
		default:
			return p
		}
	}
}

// rewriteArmsFetch applies RemoveFetch to every arm's bound pattern,
// dropping arms that collapse to False and truncating after the first
// irrefutable arm (invariant I3).
func rewriteArmsFetch(arms []ArmResult, f *pattern.Pattern) []ArmResult {
	out := make([]ArmResult, 0, len(arms))
	for _, a := range arms {
		rewritten := RemoveFetch(a.Bound, f)
		if rewritten.Kind == pattern.KFalse {
			continue
		}
		out = append(out, ArmResult{Index: a.Index, Bound: rewritten, Bindings: a.Bindings, Arm: a.Arm})
		if pattern.IsIrrefutable(rewritten) {
			break
		}
	}
	return out
}

// rewriteArmsTest is rewriteArmsFetch's counterpart for a test action
// evaluating to sense.
func rewriteArmsTest(arms []ArmResult, test *pattern.Pattern, sense bool, o oracle.Oracle) []ArmResult {
	out := make([]ArmResult, 0, len(arms))
	for _, a := range arms {
		rewritten := RewriteTest(a.Bound, test, sense, o)
		if rewritten.Kind == pattern.KFalse {
			continue
		}
		out = append(out, ArmResult{Index: a.Index, Bound: rewritten, Bindings: a.Bindings, Arm: a.Arm})
		if pattern.IsIrrefutable(rewritten) {
			break
		}
	}
	return out
}
