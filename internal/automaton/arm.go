package automaton

import (
	"fmt"
	"strings"

	"matchc/internal/pattern"
	"matchc/internal/surface"
)

// ArmResult is the "partial arm result" of spec §3: an arm's original
// index, its currently-live bound pattern (shrinking as the builder walks
// deeper), the bindings visible in its result expression, and a pointer
// back to the surface arm for the emitter to read its body from.
type ArmResult struct {
	Index    int
	Bound    *pattern.Pattern
	Bindings pattern.Bindings
	Arm      *surface.Arm
}

// Equal compares two ArmResults by index, bound pattern, and bindings,
// exactly the three fields spec §3 names.
func (a ArmResult) Equal(other ArmResult) bool {
	return a.Index == other.Index && pattern.Equal(a.Bound, other.Bound) && a.Bindings.Equal(other.Bindings)
}

func (a ArmResult) hashKey() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:%s:", a.Index, pattern.Hash(a.Bound))
	for _, name := range a.Bindings.Names() {
		t, _ := a.Bindings.Lookup(name)
		fmt.Fprintf(&sb, "%s=%s,", name, t)
	}
	return sb.String()
}

// armListKey is the dedup identity for a node's arm list (spec C3:
// "Identity-for-deduplication at the automaton-build phase is by the list
// of arms").
func armListKey(arms []ArmResult) string {
	var sb strings.Builder
	for _, a := range arms {
		sb.WriteString(a.hashKey())
		sb.WriteByte('|')
	}
	return sb.String()
}
