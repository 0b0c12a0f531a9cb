package automaton

import (
	"fmt"

	"matchc/internal/pattern"
)

// Minimize runs C6: bottom-up post-order merge of behaviorally equivalent
// nodes by (action, successors), then stamps a label on every node that
// ends up reached by ≥2 distinct predecessors in the merged DAG
// (invariant I4), since only those need one for the emitter to jump to.
func Minimize(root *Node) *Node {
	m := &minimizer{
		visited:  make(map[*Node]*Node),
		keyCache: make(map[string]*Node),
	}
	merged := m.visit(root)
	labelNodes(merged)
	return merged
}

type minimizer struct {
	visited  map[*Node]*Node
	keyCache map[string]*Node
}

func (m *minimizer) visit(n *Node) *Node {
	if cached, ok := m.visited[n]; ok {
		return cached
	}
	newSucc := make([]*Node, len(n.Successors))
	for i, s := range n.Successors {
		newSucc[i] = m.visit(s)
	}

	key := nodeKey(n, newSucc)
	if existing, ok := m.keyCache[key]; ok {
		m.visited[n] = existing
		return existing
	}

	merged := &Node{
		Arms:       n.Arms,
		ActionKind: n.ActionKind,
		Test:       n.Test,
		Successors: newSucc,
		SuccessArm: n.SuccessArm,
	}
	m.keyCache[key] = merged
	m.visited[n] = merged
	return merged
}

// nodeKey is the identity C6 interns by: (action, successors), where
// successors are already-minimized pointers so pointer identity reflects
// behavioral equivalence of the subgraph beneath them.
func nodeKey(n *Node, minimizedSucc []*Node) string {
	switch n.ActionKind {
	case ActionFailure:
		return "failure"
	case ActionSuccess:
		return fmt.Sprintf("success:%s", n.SuccessArm.hashKey())
	case ActionFetch:
		return fmt.Sprintf("fetch:%s:%p", pattern.Hash(n.Test), minimizedSucc[0])
	case ActionTest:
		return fmt.Sprintf("test:%s:%p:%p", pattern.Hash(n.Test), minimizedSucc[0], minimizedSucc[1])
	default:
		return fmt.Sprintf("none:%p", n)
	}
}

// labelNodes computes in-degree over the merged DAG reachable from root
// and stamps a fresh label on every node whose in-degree is ≥2.
func labelNodes(root *Node) {
	indegree := make(map[*Node]int)
	var order []*Node
	visited := make(map[*Node]bool)

	var walk func(n *Node)
	walk = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		order = append(order, n)
		for _, s := range n.Successors {
			indegree[s]++
			walk(s)
		}
	}
	walk(root)

	seq := 0
	for _, n := range order {
		if indegree[n] >= 2 {
			n.Label = fmt.Sprintf("L%d", seq)
			seq++
		}
	}
}
