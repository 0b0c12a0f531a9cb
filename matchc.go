// Package matchc is the production compiler's public surface (spec §6):
// compile_match, compile_match_reference, compile_is_match and
// compile_assignment, built on top of the binder (C2), automaton (C3/C4),
// simplifier (C5), minimizer (C6) and emitter (C7) packages.
package matchc

import (
	"fmt"
	"go/ast"
	"go/token"

	"matchc/internal/automaton"
	"matchc/internal/binder"
	"matchc/internal/emitter"
	"matchc/internal/oracle"
	"matchc/internal/pattern"
	"matchc/internal/reference"
	"matchc/internal/surface"
	"matchc/matcherr"
)

// CompileMatch is compile_match: it lowers scrutinee and arms against o
// into the deduplicating, minimized statement list that assigns the
// matched arm's result to resultVar, plus any UnreachableArm warnings
// (spec §4.3-§4.6, P5).
func CompileMatch(o oracle.Oracle, resultVar string, scrutinee ast.Expr, arms []surface.Arm) ([]ast.Stmt, []matcherr.UnreachableArm, error) {
	b := binder.New(o)
	input := b.NewTemp()
	bound, err := bindArms(b, input, arms)
	if err != nil {
		return nil, nil, err
	}

	armResults := make([]automaton.ArmResult, len(bound))
	for i, a := range bound {
		armResults[i] = automaton.ArmResult{
			Index:    a.Index,
			Bound:    a.Bound,
			Bindings: a.Bindings,
			Arm:      &surface.Arm{Index: a.Index, Pattern: a.Pattern, Body: a.Body, Loc: a.Loc},
		}
	}

	builder := automaton.NewBuilder(o)
	root := builder.Build(armResults)
	minimized := automaton.Minimize(root)

	stmts, err := emitter.New(resultVar).Emit(scrutinee, input, b.Assertions(), minimized)
	if err != nil {
		return nil, nil, err
	}
	return stmts, builder.Warnings, nil
}

// CompileMatchReference is compile_match_reference: the same inputs as
// CompileMatch, lowered instead through the brute-force arm-by-arm
// if/else chain (spec §6, P1). It shares bindArms with CompileMatch so
// both compilers start from identical bound patterns and bindings; only
// the automaton/emitter vs. plain if-chain lowering differs.
func CompileMatchReference(o oracle.Oracle, resultVar string, scrutinee ast.Expr, arms []surface.Arm) ([]ast.Stmt, error) {
	b := binder.New(o)
	input := b.NewTemp()
	bound, err := bindArms(b, input, arms)
	if err != nil {
		return nil, err
	}

	refArms := make([]reference.Arm, len(bound))
	for i, a := range bound {
		refArms[i] = reference.Arm{Bound: a.Bound, Body: a.Body, Loc: a.Loc}
	}
	return reference.New().Compile(resultVar, scrutinee, input, b.Assertions(), refArms)
}

// boundArm is one arm after binding, guard/body free-variable validation
// (P6, P3) and result-body rewriting to temporaries: the shape both
// CompileMatch and CompileMatchReference build their own Arm type from.
type boundArm struct {
	Index    int
	Bound    *pattern.Pattern
	Bindings pattern.Bindings
	Pattern  *surface.Pattern
	Body     []surface.Stmt
	Loc      matcherr.Location
}

// bindArms runs BindArm over every arm in source order, checks that the
// guard and result body never reference a pattern variable outside what
// the pattern actually bound on every matched branch (P6 for ||, plain
// scoping otherwise), and rewrites each result body's free variables to
// their bound temporaries so the emitter never has to consult bindings
// itself.
func bindArms(b *binder.Binder, input pattern.Temp, arms []surface.Arm) ([]boundArm, error) {
	out := make([]boundArm, len(arms))
	for i := range arms {
		arm := &arms[i]
		bound, bindings, err := b.BindArm(arm, input)
		if err != nil {
			return nil, err
		}
		if err := checkFreeVars(freeVarsOf(arm.Guard), bindings, arm.Loc, "guard"); err != nil {
			return nil, err
		}
		if err := checkFreeVars(bodyFreeVars(arm.Body), bindings, arm.Loc, "arm result"); err != nil {
			return nil, err
		}
		out[i] = boundArm{
			Index:    arm.Index,
			Bound:    bound,
			Bindings: bindings,
			Pattern:  arm.Pattern,
			Body:     rewriteBody(arm.Body, bindings),
			Loc:      arm.Loc,
		}
	}
	return out, nil
}

func freeVarsOf(h surface.HostExpr) []string {
	if h == nil {
		return nil
	}
	return h.FreeVars()
}

func bodyFreeVars(body []surface.Stmt) []string {
	var names []string
	for _, s := range body {
		switch st := s.(type) {
		case surface.ExprStmt:
			names = append(names, freeVarsOf(st.Expr)...)
		case surface.MatchReturnStmt:
			names = append(names, freeVarsOf(st.Value)...)
		}
	}
	return names
}

// checkFreeVars reports UndefinedVariable for the first name in names not
// present in bindings: a guard or result expression reaching past what the
// pattern actually bound (e.g. a variable from only one side of a ||,
// spec P6).
func checkFreeVars(names []string, bindings pattern.Bindings, loc matcherr.Location, where string) error {
	for _, name := range names {
		if _, ok := bindings.Lookup(name); !ok {
			return matcherr.NewAtf(matcherr.KindUndefinedVariable, loc,
				"%s references %q, which is not bound on every matched branch", where, name)
		}
	}
	return nil
}

func rewriteBody(body []surface.Stmt, bindings pattern.Bindings) []surface.Stmt {
	if len(body) == 0 {
		return nil
	}
	subst := substFor(bindings)
	out := make([]surface.Stmt, len(body))
	for i, s := range body {
		switch st := s.(type) {
		case surface.ExprStmt:
			out[i] = surface.ExprStmt{Expr: st.Expr.Rewrite(subst)}
		case surface.MatchReturnStmt:
			out[i] = surface.MatchReturnStmt{Value: st.Value.Rewrite(subst)}
		case surface.MatchFailStmt:
			out[i] = st
		}
	}
	return out
}

func substFor(bindings pattern.Bindings) map[string]string {
	subst := make(map[string]string, bindings.Len())
	for _, name := range bindings.Names() {
		t, _ := bindings.Lookup(name)
		subst[name] = string(t)
	}
	return subst
}

func defineStmt(t pattern.Temp, value ast.Expr) ast.Stmt {
	return &ast.AssignStmt{Lhs: []ast.Expr{ast.NewIdent(string(t))}, Tok: token.DEFINE, Rhs: []ast.Expr{value}}
}

func varDecl(name, typeName string) ast.Stmt {
	return &ast.DeclStmt{Decl: &ast.GenDecl{
		Tok: token.VAR,
		Specs: []ast.Spec{&ast.ValueSpec{
			Names: []*ast.Ident{ast.NewIdent(name)},
			Type:  ast.NewIdent(typeName),
		}},
	}}
}

func assign(lhs, rhs ast.Expr) ast.Stmt {
	return &ast.AssignStmt{Lhs: []ast.Expr{lhs}, Tok: token.ASSIGN, Rhs: []ast.Expr{rhs}}
}

func matchrtSel(name string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent("matchrt"), Sel: ast.NewIdent(name)}
}

func assertionStmts(scrutinee ast.Expr, assertions []binder.Assertion) []ast.Stmt {
	var stmts []ast.Stmt
	for _, a := range assertions {
		call := &ast.CallExpr{
			Fun: matchrtSel("CheckTypeBinding"),
			Args: []ast.Expr{
				strLit(a.TypeName), strLit(a.Resolved.Name()), strLit(a.Resolved.Name()),
			},
		}
		stmts = append(stmts, &ast.IfStmt{
			Init: &ast.AssignStmt{Lhs: []ast.Expr{ast.NewIdent("err")}, Tok: token.DEFINE, Rhs: []ast.Expr{call}},
			Cond: &ast.BinaryExpr{X: ast.NewIdent("err"), Op: token.NEQ, Y: ast.NewIdent("nil")},
			Body: &ast.BlockStmt{List: []ast.Stmt{
				&ast.ExprStmt{X: &ast.CallExpr{Fun: ast.NewIdent("panic"), Args: []ast.Expr{ast.NewIdent("err")}}},
			}},
		})
	}
	return stmts
}

func strLit(s string) ast.Expr {
	return &ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", s)}
}
