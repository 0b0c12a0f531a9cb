package automaton

import "matchc/internal/pattern"

// ActionKind classifies a Node's Action per invariant I2: unset before
// the builder visits the node, then exactly one of success/fetch/test/
// failure.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSuccess
	ActionFetch
	ActionTest
	ActionFailure
)

// Node is an automaton node (C3): the surviving arms in priority order,
// plus, once the builder has visited it, the chosen action and its
// successors. Two nodes with equal arm lists are pointer-identical after
// interning (spec §3's "Automaton node" and C3's dedup rule).
type Node struct {
	Arms []ArmResult

	ActionKind ActionKind
	Test       *pattern.Pattern // the fetch/test leaf chosen as this node's action; nil for success/failure
	Successors []*Node          // len 0 (success/failure), 1 (fetch), or 2 (test: [trueBranch, falseBranch])
	SuccessArm *ArmResult       // set only when ActionKind == ActionSuccess

	// Label is stamped by the minimizer (C6) on any node reached by ≥2
	// distinct predecessors (invariant I4); empty otherwise.
	Label string
}

// IsTerminal reports whether n has no successors (success or failure).
func (n *Node) IsTerminal() bool {
	return n.ActionKind == ActionSuccess || n.ActionKind == ActionFailure
}
