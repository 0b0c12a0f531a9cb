package pattern

// Temp is a uniquely-named symbol the binder allocates for a fetch's
// result or for the compilation's scrutinee input. Two structurally equal
// fetches allocate the same Temp (invariant I1); equality is then just
// Go's built-in string equality.
type Temp string

// Bindings is the insertion-ordered immutable mapping from user-visible
// pattern-variable names to the temporaries holding their values (spec
// §3, "Variable bindings"). It is immutable: every mutating operation
// returns a new Bindings, so a single map can be shared freely across the
// branches of an And/Or without one branch's bindings leaking into a
// sibling that never executes that branch.
type Bindings struct {
	order []string
	vals  map[string]Temp
}

// Empty is the Bindings with no entries.
var Empty = Bindings{}

// With returns a new Bindings with name bound to t. If name is already
// bound its existing position in iteration order is kept and only its
// value is replaced.
func (b Bindings) With(name string, t Temp) Bindings {
	if existing, ok := b.vals[name]; ok && existing == t {
		return b
	}
	order := make([]string, len(b.order), len(b.order)+1)
	copy(order, b.order)
	vals := make(map[string]Temp, len(b.vals)+1)
	for k, v := range b.vals {
		vals[k] = v
	}
	if _, ok := vals[name]; !ok {
		order = append(order, name)
	}
	vals[name] = t
	return Bindings{order: order, vals: vals}
}

// Merge returns a new Bindings containing every entry of b followed by
// every entry of other not already present in b. The binder threads
// bindings through And by passing them along rather than calling Merge.
func (b Bindings) Merge(other Bindings) Bindings {
	result := b
	for _, name := range other.order {
		result = result.With(name, other.vals[name])
	}
	return result
}

// Lookup returns the temp name is bound to, if any.
func (b Bindings) Lookup(name string) (Temp, bool) {
	t, ok := b.vals[name]
	return t, ok
}

// Names returns the bound variable names in insertion order.
func (b Bindings) Names() []string {
	return append([]string(nil), b.order...)
}

// Len reports how many variables are bound.
func (b Bindings) Len() int { return len(b.order) }

// Equal reports whether b and other bind the same names to the same
// temporaries, regardless of insertion order (used by PartialArmResult
// equality, spec §3).
func (b Bindings) Equal(other Bindings) bool {
	if len(b.vals) != len(other.vals) {
		return false
	}
	for k, v := range b.vals {
		if ov, ok := other.vals[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
