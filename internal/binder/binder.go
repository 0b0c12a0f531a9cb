// Package binder implements C2: lowering surface patterns into the bound
// pattern algebra (internal/pattern), threading a cache of shared fetch
// temporaries and the variable-binding environment through each arm.
// This mirrors gala's transformer package in spirit — match.go there
// drives one pattern at a time through scope.go's binding state — but the
// output here is an algebraic value for C4 to consume rather than Go
// source text.
package binder

import (
	"fmt"

	"matchc/internal/oracle"
	"matchc/internal/pattern"
	"matchc/internal/surface"
	"matchc/matcherr"
)

// Assertion records that a TypeTest resolved a type name at compile time;
// the emitter turns each into a matchrt.CheckTypeBinding call so the
// generated code can detect a host type environment that changed shape
// between compilation and execution (spec §4.6's "runtime assertions the
// binder accumulated").
type Assertion struct {
	TypeName string
	Resolved oracle.Type
}

// Binder holds the state that must persist across every arm of a single
// match expression: the oracle answering type questions, the fetch
// interning cache enforcing invariant I1, the temporary name counter, and
// the accumulated runtime assertions.
type Binder struct {
	Oracle oracle.Oracle

	cache      map[string]pattern.Temp
	tempSeq    int
	phiSeq     int
	assertions []Assertion
	seenTypes  map[string]bool
}

// New returns a Binder ready to bind every arm of one match expression
// against o.
func New(o oracle.Oracle) *Binder {
	return &Binder{
		Oracle:    o,
		cache:     make(map[string]pattern.Temp),
		seenTypes: make(map[string]bool),
	}
}

// NewTemp allocates a fresh temporary. Exported so the top-level compile
// entry points and tests can allocate the scrutinee's input temporary
// using the same naming scheme (spec §4.6).
func (b *Binder) NewTemp() pattern.Temp {
	b.tempSeq++
	return pattern.Temp(fmt.Sprintf("t%d", b.tempSeq))
}

func (b *Binder) newPhiTemp() pattern.Temp {
	b.phiSeq++
	return pattern.Temp(fmt.Sprintf("phi%d", b.phiSeq))
}

// Assertions returns the runtime type-binding checks accumulated across
// every BindArm call so far, in first-seen order.
func (b *Binder) Assertions() []Assertion {
	return append([]Assertion(nil), b.assertions...)
}

// intern looks up p by its structural hash (which ignores Result, per
// pattern.Hash) and either reuses a previously allocated Result temp for
// an equal fetch or allocates a fresh one and records it, implementing
// invariant I1.
func (b *Binder) intern(p *pattern.Pattern) pattern.Temp {
	key := pattern.Hash(p)
	if t, ok := b.cache[key]; ok {
		p.Result = t
		return t
	}
	t := b.NewTemp()
	p.Result = t
	b.cache[key] = t
	return t
}

func (b *Binder) recordAssertion(typeName string, t oracle.Type) {
	if typeName == "" || b.seenTypes[typeName] {
		return
	}
	b.seenTypes[typeName] = true
	b.assertions = append(b.assertions, Assertion{TypeName: typeName, Resolved: t})
}

// BindArm lowers one arm's pattern and optional guard sugar into a single
// bound pattern and the bindings visible in its result expression,
// relative to input (the scrutinee's temporary). This is bind_pattern
// from spec §4.2, extended to also fold in Arm.Guard's `case pat where
// guard` sugar as a trailing conjunct.
func (b *Binder) BindArm(arm *surface.Arm, input pattern.Temp) (*pattern.Pattern, pattern.Bindings, error) {
	bound, bindings, err := b.Bind(arm.Pattern, input, pattern.Empty)
	if err != nil {
		return nil, pattern.Empty, err
	}
	if arm.Guard == nil {
		return bound, bindings, nil
	}
	guard := b.shredWhere(arm.Guard, false, input, bindings)
	return pattern.And(bound, guard), bindings, nil
}

// Bind is bind_pattern (spec §4.2): lower p against input given bindings
// already in scope, returning the bound pattern and the bindings visible
// after it (which is bindings extended with anything p binds).
func (b *Binder) Bind(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings) (*pattern.Pattern, pattern.Bindings, error) {
	switch p.Kind {
	case surface.Wildcard:
		return pattern.True, bindings, nil

	case surface.Literal:
		return b.bindLiteral(p, input, bindings)

	case surface.Interp:
		return b.bindInterp(p, input, bindings)

	case surface.Ident:
		return b.bindIdent(p, input, bindings)

	case surface.Ascribe:
		return b.bindAscribe(p, input, bindings)

	case surface.Call:
		return b.bindCall(p, input, bindings)

	case surface.Tuple:
		return b.bindSequenceLike(p, input, bindings, oracle.Named("tuple"))

	case surface.Sequence:
		return b.bindSequenceLike(p, input, bindings, oracle.Named("sequence"))

	case surface.And:
		left, bindings, err := b.Bind(p.Left, input, bindings)
		if err != nil {
			return nil, pattern.Empty, err
		}
		right, bindings, err := b.Bind(p.Right, input, bindings)
		if err != nil {
			return nil, pattern.Empty, err
		}
		return pattern.And(left, right), bindings, nil

	case surface.Or:
		return b.bindOr(p, input, bindings)

	case surface.Where:
		inner, innerBindings, err := b.Bind(p.Body, input, bindings)
		if err != nil {
			return nil, pattern.Empty, err
		}
		guard := b.shredWhere(p.Expr, false, input, innerBindings)
		return pattern.And(inner, guard), innerBindings, nil

	case surface.Splat:
		// A splat only makes sense as an element of a Tuple/Sequence's
		// Elements list; bindSequenceLike handles it there directly and
		// never recurses into it through Bind.
		return nil, pattern.Empty, matcherr.NewAt(matcherr.KindUnrecognizedPattern, p.Loc,
			"rest pattern can only appear as an element of a sequence or tuple pattern")

	default:
		return nil, pattern.Empty, matcherr.NewAt(matcherr.KindUnrecognizedPattern, p.Loc,
			fmt.Sprintf("unrecognized pattern kind %d", int(p.Kind)))
	}
}

func (b *Binder) bindIdent(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings) (*pattern.Pattern, pattern.Bindings, error) {
	if existing, ok := bindings.Lookup(p.Name); ok {
		test := &pattern.Pattern{
			Kind:     pattern.KEqualValueTest,
			Input:    input,
			Value:    identExpr(existing),
			Captured: pattern.Empty.With(p.Name, existing),
		}
		return test, bindings, nil
	}
	return pattern.True, bindings.With(p.Name, input), nil
}

func (b *Binder) bindAscribe(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings) (*pattern.Pattern, pattern.Bindings, error) {
	t, err := b.Oracle.ResolveType(p.Type, p.Loc)
	if err != nil {
		return nil, pattern.Empty, err
	}
	b.recordAssertion(t.Name(), t)
	test := &pattern.Pattern{Kind: pattern.KTypeTest, Input: input, Type: t}
	if p.Inner == nil {
		return test, bindings, nil
	}
	inner, bindings, err := b.Bind(p.Inner, input, bindings)
	if err != nil {
		return nil, pattern.Empty, err
	}
	return pattern.And(test, inner), bindings, nil
}

func (b *Binder) bindOr(p *surface.Pattern, input pattern.Temp, bindings pattern.Bindings) (*pattern.Pattern, pattern.Bindings, error) {
	left, leftBindings, err := b.Bind(p.Left, input, bindings)
	if err != nil {
		return nil, pattern.Empty, err
	}
	right, rightBindings, err := b.Bind(p.Right, input, bindings)
	if err != nil {
		return nil, pattern.Empty, err
	}

	merged := bindings
	for _, name := range leftBindings.Names() {
		tl, _ := leftBindings.Lookup(name)
		tr, ok := rightBindings.Lookup(name)
		if !ok {
			continue // not bound on both branches, spec §4.2.1 phi-merge only covers shared vars
		}
		if tl == tr {
			merged = merged.With(name, tl)
			continue
		}
		phi := b.newPhiTemp()
		left = pattern.And(left, b.phiFetch(tl, name, phi))
		right = pattern.And(right, b.phiFetch(tr, name, phi))
		merged = merged.With(name, phi)
	}
	return pattern.Or(left, right), merged, nil
}

// phiFetch builds the FetchExpression a disjunction branch gains when one
// of its variables needs re-exposing under a fresh phi temporary so both
// branches agree on a name for it afterward (spec §4.2.1).
func (b *Binder) phiFetch(src pattern.Temp, varName string, phi pattern.Temp) *pattern.Pattern {
	fetch := &pattern.Pattern{
		Kind:     pattern.KFetchExpression,
		Input:    src,
		Value:    identExpr(src),
		Captured: pattern.Empty.With(varName, src),
		PhiOf:    varName,
		Result:   phi,
	}
	return fetch
}
