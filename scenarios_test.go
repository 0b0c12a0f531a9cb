package matchc

import (
	"go/ast"
	"go/token"
	"testing"

	"matchc/internal/automaton"
	"matchc/internal/binder"
	"matchc/internal/oracle"
	"matchc/internal/pattern"
	"matchc/internal/surface"
	"matchc/matcherr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litP(v any) *surface.Pattern { return &surface.Pattern{Kind: surface.Literal, LitValue: v} }

func tupleP(elements ...*surface.Pattern) *surface.Pattern {
	return &surface.Pattern{Kind: surface.Tuple, Elements: elements}
}

func seqP(elements ...*surface.Pattern) *surface.Pattern {
	return &surface.Pattern{Kind: surface.Sequence, Elements: elements}
}

func splatP(name string) *surface.Pattern {
	return &surface.Pattern{Kind: surface.Splat, SplatName: name}
}

func andP(left, right *surface.Pattern) *surface.Pattern {
	return &surface.Pattern{Kind: surface.And, Left: left, Right: right}
}

func orP(left, right *surface.Pattern) *surface.Pattern {
	return &surface.Pattern{Kind: surface.Or, Left: left, Right: right}
}

// S1: Foo{X:1, Y:2} matched by Foo(X=x1) binds x1 to the named field X,
// not Y — running the compiled statements against a real Foo value is
// the only way to tell those two outcomes apart.
func TestScenarioS1StructByName(t *testing.T) {
	o := oracle.NewStaticOracle(map[string]oracle.TypeInfo{
		"Foo": {Fields: []string{"X", "Y"}, FieldTypes: map[string]string{"X": "int", "Y": "int"}},
	})
	pat := &surface.Pattern{Kind: surface.Call, Callee: "Foo", Args: []surface.Arg{
		{Name: "X", Pattern: ident("x1")},
	}}
	arms := []surface.Arm{{Index: 0, Pattern: pat, Body: resultBody("x1")}}

	stmts, warnings, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, stmts)

	value, err := runMatch(stmts, "result", map[string]any{"v": Foo{X: 1, Y: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, value)
}

// S2: (1, (2, x) | (x, _)) — x is bound by both disjunction branches (the
// first only when the inner tuple's head is 2, the second unconditionally),
// so whichever branch actually matches first must still leave x visible in
// the result. Against (1, (2, 3)) the first branch holds, so x is bound to
// the inner tuple's second element, not its first.
func TestScenarioS2DisjunctionBinding(t *testing.T) {
	o := oracle.NewStaticOracle(nil)
	inner := orP(tupleP(litP(2), ident("x")), tupleP(ident("x"), wildcard()))
	pat := tupleP(litP(1), inner)
	arms := []surface.Arm{{Index: 0, Pattern: pat, Body: resultBody("x")}}

	stmts, warnings, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, stmts)

	value, err := runMatch(stmts, "result", map[string]any{"v": []any{1, []any{2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, 3, value)

	// (1, (5, 9)) fails the first branch's literal test, so x falls back to
	// the second branch's unconditional binding of the inner tuple's head.
	value, err = runMatch(stmts, "result", map[string]any{"v": []any{1, []any{5, 9}}})
	require.NoError(t, err)
	assert.Equal(t, 5, value)
}

// S3: (1, a && (2, b)) — the outer conjunction's left operand (a, bound to
// the whole inner tuple) survives alongside the inner tuple's own binding
// of b.
func TestScenarioS3ConjunctionKeepsOuterBinding(t *testing.T) {
	o := oracle.NewStaticOracle(nil)
	pat := tupleP(litP(1), andP(ident("a"), tupleP(litP(2), ident("b"))))
	arms := []surface.Arm{{Index: 0, Pattern: pat, Body: []surface.Stmt{
		surface.ExprStmt{Expr: surface.GoExpr{Expr: &ast.CompositeLit{Elts: []ast.Expr{ast.NewIdent("a"), ast.NewIdent("b")}}, Free: []string{"a", "b"}}},
	}}}

	stmts, warnings, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, stmts)

	value, err := runMatch(stmts, "result", map[string]any{"v": []any{1, []any{2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{2, 3}, 3}, value)
}

// S4: (a, b..., c) over a sequence binds a to the first element, c to the
// last, and b to the range in between (a FetchRange with First: 1 and
// FromEnd: 1).
func TestScenarioS4SplatInMiddle(t *testing.T) {
	o := oracle.NewStaticOracle(nil)
	pat := seqP(ident("a"), splatP("b"), ident("c"))
	b := binder.New(o)
	input := b.NewTemp()
	bound, bindings, err := b.Bind(pat, input, pattern.Empty)
	require.NoError(t, err)

	_, aOK := bindings.Lookup("a")
	_, bOK := bindings.Lookup("b")
	_, cOK := bindings.Lookup("c")
	assert.True(t, aOK)
	assert.True(t, bOK)
	assert.True(t, cOK)

	var rangeFetch *pattern.Pattern
	var scan func(p *pattern.Pattern)
	scan = func(p *pattern.Pattern) {
		if p.Kind == pattern.KFetchRange {
			rangeFetch = p
		}
		for _, s := range p.Subs {
			scan(s)
		}
	}
	scan(bound)
	require.NotNil(t, rangeFetch)
	assert.Equal(t, 1, rangeFetch.First)
	assert.Equal(t, 1, rangeFetch.FromEnd)
}

// S5: [x, y where y > x] — the guard references x, bound earlier in the
// same pattern, so it must compile without an UndefinedVariable error; an
// unguarded miss becomes a runtime MatchFailure, not a compile error.
func TestScenarioS5GuardUsesEarlierBinding(t *testing.T) {
	o := oracle.NewStaticOracle(nil)
	guard := surface.GoExpr{
		Expr: &ast.BinaryExpr{X: ast.NewIdent("y"), Op: token.GTR, Y: ast.NewIdent("x")},
		Free: []string{"x", "y"},
	}
	arms := []surface.Arm{{
		Index:   0,
		Pattern: seqP(ident("x"), ident("y")),
		Guard:   guard,
		Body: []surface.Stmt{
			surface.ExprStmt{Expr: surface.GoExpr{Expr: &ast.CompositeLit{Elts: []ast.Expr{ast.NewIdent("x"), ast.NewIdent("y")}}, Free: []string{"x", "y"}}},
		},
	}}

	stmts, warnings, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, stmts)

	value, err := runMatch(stmts, "result", map[string]any{"v": []any{1, 5}})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 5}, value)

	// y is not > x, so the guard fails and there is no other arm to fall
	// back to: a runtime MatchFailure, not a wrong result.
	_, err = runMatch(stmts, "result", map[string]any{"v": []any{5, 1}})
	assert.Error(t, err)
}

// S6: two wildcard arms in a row; the second is unreachable because the
// first is irrefutable (P5).
func TestScenarioS6ReachabilityWarning(t *testing.T) {
	o := oracle.NewStaticOracle(nil)
	arms := []surface.Arm{
		{Index: 0, Pattern: wildcard(), Body: []surface.Stmt{surface.ExprStmt{Expr: surface.GoExpr{Expr: ast.NewIdent("v")}}}},
		{Index: 1, Pattern: wildcard(), Body: []surface.Stmt{surface.ExprStmt{Expr: surface.GoExpr{Expr: ast.NewIdent("v")}}}},
	}
	_, warnings, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].ArmIndex)
}

// S7: Foo(x,y,z) against a 2-field Foo is a compile-time WrongFieldCount
// error, not a runtime failure.
func TestScenarioS7WrongArity(t *testing.T) {
	o := oracle.NewStaticOracle(map[string]oracle.TypeInfo{
		"Foo": {Fields: []string{"x", "y"}},
	})
	pat := callOf("Foo", ident("x"), ident("y"), ident("z"))
	arms := []surface.Arm{{Index: 0, Pattern: pat, Body: resultBody("x")}}

	_, _, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.Error(t, err)
	var ce *matcherr.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, matcherr.KindWrongFieldCount, ce.Kind)
}

// S8: [$a, $b, $c, out] — the first three elements are interpolated host
// values (equality tests against whatever a/b/c hold in the caller's
// scope, not new bindings), and out captures the fourth.
func TestScenarioS8Interpolation(t *testing.T) {
	o := oracle.NewStaticOracle(nil)
	interp := func(name string) *surface.Pattern {
		return &surface.Pattern{Kind: surface.Interp, Expr: surface.GoExpr{Expr: ast.NewIdent(name)}}
	}
	pat := seqP(interp("a"), interp("b"), interp("c"), ident("out"))
	arms := []surface.Arm{{Index: 0, Pattern: pat, Body: resultBody("out")}}

	stmts, warnings, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, stmts)

	callerScope := map[string]any{"v": []any{10, 20, 30, 4}, "a": 10, "b": 20, "c": 30}
	value, err := runMatch(stmts, "result", callerScope)
	require.NoError(t, err)
	assert.Equal(t, 4, value)

	// b no longer matches the caller's b, so the interpolated equality
	// test fails and the match has nowhere else to go.
	callerScope["v"] = []any{10, 99, 30, 4}
	_, err = runMatch(stmts, "result", callerScope)
	assert.Error(t, err)
}

// TestPropertyP3VariableScopeIsolation is P3: a name bound by one arm's
// pattern never leaks into a sibling arm's result body.
func TestPropertyP3VariableScopeIsolation(t *testing.T) {
	o := testOracle()
	arms := []surface.Arm{
		{Index: 0, Pattern: callOf("Dog", ident("n")), Body: resultBody("n")},
		{Index: 1, Pattern: callOf("Cat", wildcard()), Body: resultBody("n")}, // n is not bound here
	}
	_, _, err := CompileMatch(o, "result", ast.NewIdent("v"), arms)
	require.Error(t, err)
	var ce *matcherr.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, matcherr.KindUndefinedVariable, ce.Kind)
}

// TestPropertyP7IdempotentMinimization checks that minimizing an
// already-minimized automaton is a no-op up to node shape.
func TestPropertyP7IdempotentMinimization(t *testing.T) {
	o := testOracle()
	b := binder.New(o)
	input := b.NewTemp()
	arm0 := &surface.Arm{Index: 0, Pattern: callOf("Dog", ident("n")), Body: resultBody("n")}
	arm1 := &surface.Arm{Index: 1, Pattern: callOf("Cat", ident("n")), Body: resultBody("n")}
	bound0, bindings0, err := b.BindArm(arm0, input)
	require.NoError(t, err)
	bound1, bindings1, err := b.BindArm(arm1, input)
	require.NoError(t, err)

	arms := []automaton.ArmResult{
		{Index: 0, Bound: bound0, Bindings: bindings0, Arm: arm0},
		{Index: 1, Bound: bound1, Bindings: bindings1, Arm: arm1},
	}
	builder := automaton.NewBuilder(o)
	root := builder.Build(arms)
	once := automaton.Minimize(root)
	twice := automaton.Minimize(once)

	assert.True(t, sameShape(once, twice, map[*automaton.Node]*automaton.Node{}))
}

func sameShape(a, b *automaton.Node, seen map[*automaton.Node]*automaton.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if prior, ok := seen[a]; ok {
		return prior == b
	}
	seen[a] = b
	if a.ActionKind != b.ActionKind || len(a.Successors) != len(b.Successors) {
		return false
	}
	for i := range a.Successors {
		if !sameShape(a.Successors[i], b.Successors[i], seen) {
			return false
		}
	}
	return true
}

// TestPropertyP8SingleEvaluation checks the emitted statement list assigns
// the scrutinee expression into the input temp exactly once, before any
// test or fetch runs, so a scrutinee with side effects only pays for them
// once per match.
func TestPropertyP8SingleEvaluation(t *testing.T) {
	o := testOracle()
	arms := []surface.Arm{
		{Index: 0, Pattern: callOf("Dog", ident("n")), Body: resultBody("n")},
		{Index: 1, Pattern: callOf("Cat", ident("n")), Body: resultBody("n")},
	}
	scrutinee := &ast.CallExpr{Fun: ast.NewIdent("nextAnimal")}

	stmts, _, err := CompileMatch(o, "result", scrutinee, arms)
	require.NoError(t, err)
	require.NotEmpty(t, stmts)

	var evalCount int
	ast.Inspect(&ast.BlockStmt{List: stmts}, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			if id, ok := call.Fun.(*ast.Ident); ok && id.Name == "nextAnimal" {
				evalCount++
			}
		}
		return true
	})
	assert.Equal(t, 1, evalCount, "the scrutinee expression must be evaluated exactly once")
}
