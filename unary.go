package matchc

import (
	"go/ast"
	"go/token"

	"matchc/internal/binder"
	"matchc/internal/oracle"
	"matchc/internal/pattern"
	"matchc/internal/reference"
	"matchc/internal/surface"
)

// CompileIsMatch is compile_is_match: the boolean form of a single
// pattern against scrutinee. It has no arm list to deduplicate against,
// so it skips the automaton entirely and renders pat's bound form
// directly through the same one-pattern-at-a-time walk the reference
// compiler uses for each of its arms (reference.Compiler.EmitPattern).
// boolVar and every name pat binds are declared once, up front, so they
// are visible in the caller's scope whether or not the match holds (spec
// §6: "on success the pattern variables are introduced into the caller's
// scope").
func CompileIsMatch(o oracle.Oracle, boolVar string, scrutinee ast.Expr, pat *surface.Pattern) ([]ast.Stmt, error) {
	b := binder.New(o)
	input := b.NewTemp()
	bound, bindings, err := b.Bind(pat, input, pattern.Empty)
	if err != nil {
		return nil, err
	}

	var stmts []ast.Stmt
	stmts = append(stmts, defineStmt(input, scrutinee))
	stmts = append(stmts, assertionStmts(scrutinee, b.Assertions())...)
	stmts = append(stmts, varDecl(boolVar, "bool"))
	for _, name := range bindings.Names() {
		stmts = append(stmts, varDecl(name, "any"))
	}

	rc := reference.New()
	onMatch := func() ([]ast.Stmt, error) {
		out := []ast.Stmt{assign(ast.NewIdent(boolVar), ast.NewIdent("true"))}
		for _, name := range bindings.Names() {
			t, _ := bindings.Lookup(name)
			out = append(out, assign(ast.NewIdent(name), ast.NewIdent(string(t))))
		}
		return out, nil
	}
	body, err := rc.EmitPattern(bound, onMatch)
	if err != nil {
		return nil, err
	}
	return append(stmts, body...), nil
}

// CompileAssignment is compile_assignment: the unary destructuring form,
// `pat = value` with no alternative arm. Binding failure is a runtime
// match failure carrying value, exactly like an unmatched compile_match
// (spec §6, MatchFailure).
func CompileAssignment(o oracle.Oracle, value ast.Expr, pat *surface.Pattern) ([]ast.Stmt, error) {
	b := binder.New(o)
	input := b.NewTemp()
	bound, bindings, err := b.Bind(pat, input, pattern.Empty)
	if err != nil {
		return nil, err
	}

	var stmts []ast.Stmt
	stmts = append(stmts, defineStmt(input, value))
	stmts = append(stmts, assertionStmts(value, b.Assertions())...)
	for _, name := range bindings.Names() {
		stmts = append(stmts, varDecl(name, "any"))
	}
	matchedVar := "matched"
	stmts = append(stmts, varDecl(matchedVar, "bool"))

	rc := reference.New()
	onMatch := func() ([]ast.Stmt, error) {
		out := []ast.Stmt{assign(ast.NewIdent(matchedVar), ast.NewIdent("true"))}
		for _, name := range bindings.Names() {
			t, _ := bindings.Lookup(name)
			out = append(out, assign(ast.NewIdent(name), ast.NewIdent(string(t))))
		}
		return out, nil
	}
	body, err := rc.EmitPattern(bound, onMatch)
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, body...)

	stmts = append(stmts, &ast.IfStmt{
		Cond: &ast.UnaryExpr{Op: token.NOT, X: ast.NewIdent(matchedVar)},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.ExprStmt{X: &ast.CallExpr{
				Fun:  ast.NewIdent("panic"),
				Args: []ast.Expr{&ast.CallExpr{Fun: matchrtSel("Fail"), Args: []ast.Expr{ast.NewIdent(string(input))}}},
			}},
		}},
	})
	return stmts, nil
}
