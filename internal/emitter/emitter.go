// Package emitter implements C7: laying out a minimized automaton as a
// sequential list of Go statements. Go has no general goto-across-
// declarations, so a node reached by ≥2 predecessors (the ones C6 left
// labeled) is emitted once as a local closure and every predecessor calls
// it, rather than as a jump target — the same "shared subgraph becomes
// its own callable" idea gala's generator reaches for when a pattern's
// arms repeat work, just expressed with closures instead of duplicated
// statements.
package emitter

import (
	"fmt"
	"go/ast"
	"go/token"

	"matchc/internal/automaton"
	"matchc/internal/binder"
	"matchc/internal/pattern"
	"matchc/internal/surface"
	"matchc/matcherr"
)

// Emitter holds the state needed while laying out one compiled match
// expression: the result variable's name and a counter for any
// synthetic names it needs along the way.
type Emitter struct {
	ResultVar string
	tmp       int
}

// New returns an Emitter that will bind the match expression's value to
// resultVar.
func New(resultVar string) *Emitter {
	return &Emitter{ResultVar: resultVar}
}

// Emit lays out root as a sequence of statements that assign the
// scrutinee to inputTemp, run every assertion the binder accumulated,
// walk the automaton, and leave the chosen arm's result in e.ResultVar
// (spec §4.6).
func (e *Emitter) Emit(scrutinee ast.Expr, inputTemp pattern.Temp, assertions []binder.Assertion, root *automaton.Node) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	stmts = append(stmts, &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(string(inputTemp))},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{scrutinee},
	})
	stmts = append(stmts, assertionStmts(scrutinee, assertions)...)

	labeled := collectLabeled(root)
	for _, n := range labeled {
		stmts = append(stmts, &ast.DeclStmt{Decl: &ast.GenDecl{
			Tok: token.VAR,
			Specs: []ast.Spec{&ast.ValueSpec{
				Names: []*ast.Ident{ast.NewIdent(closureName(n))},
				Type:  &ast.FuncType{Params: &ast.FieldList{}, Results: resultSig()},
			}},
		}})
	}

	built := make(map[*automaton.Node]bool)
	for _, n := range labeled {
		body, err := e.block(n, labeled, built)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, &ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(closureName(n))},
			Tok: token.ASSIGN,
			Rhs: []ast.Expr{&ast.FuncLit{
				Type: &ast.FuncType{Params: &ast.FieldList{}, Results: resultSig()},
				Body: &ast.BlockStmt{List: body},
			}},
		})
	}

	callExpr, err := e.nodeExpr(root, labeled, built)
	if err != nil {
		return nil, err
	}
	matchedVar := e.freshName("matched")
	stmts = append(stmts,
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(e.ResultVar), ast.NewIdent(matchedVar)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{callExpr},
		},
		&ast.IfStmt{
			Cond: &ast.UnaryExpr{Op: token.NOT, X: ast.NewIdent(matchedVar)},
			Body: &ast.BlockStmt{List: []ast.Stmt{
				&ast.ExprStmt{X: &ast.CallExpr{
					Fun:  ast.NewIdent("panic"),
					Args: []ast.Expr{&ast.CallExpr{Fun: matchrtSel("Fail"), Args: []ast.Expr{ast.NewIdent(string(inputTemp))}}},
				}},
			}},
		},
	)
	return stmts, nil
}

func resultSig() *ast.FieldList {
	return &ast.FieldList{List: []*ast.Field{
		{Type: ast.NewIdent("any")},
		{Type: ast.NewIdent("bool")},
	}}
}

func assertionStmts(scrutinee ast.Expr, assertions []binder.Assertion) []ast.Stmt {
	var stmts []ast.Stmt
	for _, a := range assertions {
		errVar := "err"
		call := &ast.CallExpr{
			Fun: matchrtSel("CheckTypeBinding"),
			Args: []ast.Expr{
				&ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", a.TypeName)},
				&ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", a.Resolved.Name())},
				&ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", a.Resolved.Name())},
			},
		}
		stmts = append(stmts,
			&ast.IfStmt{
				Init: &ast.AssignStmt{Lhs: []ast.Expr{ast.NewIdent(errVar)}, Tok: token.DEFINE, Rhs: []ast.Expr{call}},
				Cond: &ast.BinaryExpr{X: ast.NewIdent(errVar), Op: token.NEQ, Y: ast.NewIdent("nil")},
				Body: &ast.BlockStmt{List: []ast.Stmt{
					&ast.ExprStmt{X: &ast.CallExpr{Fun: ast.NewIdent("panic"), Args: []ast.Expr{ast.NewIdent(errVar)}}},
				}},
			},
		)
	}
	return stmts
}

func matchrtSel(name string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent("matchrt"), Sel: ast.NewIdent(name)}
}

func closureName(n *automaton.Node) string {
	return n.Label
}

func collectLabeled(root *automaton.Node) []*automaton.Node {
	var labeled []*automaton.Node
	visited := map[*automaton.Node]bool{}
	var walk func(n *automaton.Node)
	walk = func(n *automaton.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		if n.Label != "" {
			labeled = append(labeled, n)
		}
		for _, s := range n.Successors {
			walk(s)
		}
	}
	walk(root)
	return labeled
}

// block renders n's own code (not any node reached only through a
// labeled closure call) as a statement list ending in a return.
func (e *Emitter) block(n *automaton.Node, labeled []*automaton.Node, built map[*automaton.Node]bool) ([]ast.Stmt, error) {
	built[n] = true
	return e.nodeStmts(n, labeled, built)
}

// nodeExpr renders a call/expression that evaluates to n's (value, bool)
// outcome: a direct call for a labeled node reached again, or an
// immediately-invoked function literal for one still being inlined.
func (e *Emitter) nodeExpr(n *automaton.Node, labeled []*automaton.Node, built map[*automaton.Node]bool) (ast.Expr, error) {
	if n.Label != "" {
		return &ast.CallExpr{Fun: ast.NewIdent(closureName(n))}, nil
	}
	stmts, err := e.nodeStmts(n, labeled, built)
	if err != nil {
		return nil, err
	}
	return &ast.CallExpr{Fun: &ast.FuncLit{
		Type: &ast.FuncType{Params: &ast.FieldList{}, Results: resultSig()},
		Body: &ast.BlockStmt{List: stmts},
	}}, nil
}

func (e *Emitter) nodeStmts(n *automaton.Node, labeled []*automaton.Node, built map[*automaton.Node]bool) ([]ast.Stmt, error) {
	switch n.ActionKind {
	case automaton.ActionSuccess:
		return e.emitSuccess(n)
	case automaton.ActionFailure:
		return []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("nil"), ast.NewIdent("false")}}}, nil
	case automaton.ActionFetch:
		assign, err := e.fetchAssign(n.Test)
		if err != nil {
			return nil, err
		}
		next, err := e.nodeExpr(n.Successors[0], labeled, built)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{assign, returnCall(next)}, nil
	case automaton.ActionTest:
		cond, err := testExpr(n.Test)
		if err != nil {
			return nil, err
		}
		trueExpr, err := e.nodeExpr(n.Successors[0], labeled, built)
		if err != nil {
			return nil, err
		}
		falseExpr, err := e.nodeExpr(n.Successors[1], labeled, built)
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{
			&ast.IfStmt{
				Cond: cond,
				Body: &ast.BlockStmt{List: []ast.Stmt{returnCall(trueExpr)}},
				Else: &ast.BlockStmt{List: []ast.Stmt{returnCall(falseExpr)}},
			},
		}, nil
	default:
		return nil, matcherr.New(matcherr.KindUnrecognizedCase, "automaton node has no computed action")
	}
}

func returnCall(expr ast.Expr) ast.Stmt {
	return &ast.ReturnStmt{Results: []ast.Expr{expr}}
}

func (e *Emitter) emitSuccess(n *automaton.Node) ([]ast.Stmt, error) {
	arm := n.SuccessArm
	var stmts []ast.Stmt
	var resultExpr ast.Expr = ast.NewIdent("nil")
	for _, s := range arm.Arm.Body {
		switch st := s.(type) {
		case surface.ExprStmt:
			ge, ok := st.Expr.(surface.GoExpr)
			if !ok {
				return nil, matcherr.NewAt(matcherr.KindUnrecognizedCase, arm.Arm.Loc, "arm body expression is not host-renderable")
			}
			resultExpr = ge.Expr
			stmts = append(stmts, &ast.ExprStmt{X: ge.Expr})
		case surface.MatchReturnStmt:
			ge, ok := st.Value.(surface.GoExpr)
			if !ok {
				return nil, matcherr.NewAt(matcherr.KindUnrecognizedCase, arm.Arm.Loc, "match_return value is not host-renderable")
			}
			return append(stmts, &ast.ReturnStmt{Results: []ast.Expr{ge.Expr, ast.NewIdent("true")}}), nil
		case surface.MatchFailStmt:
			return append(stmts, &ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("nil"), ast.NewIdent("false")}}), nil
		}
	}
	if len(arm.Arm.Body) > 0 {
		stmts = stmts[:len(stmts)-1] // last expr statement's value becomes the result, not a standalone statement
	}
	return append(stmts, &ast.ReturnStmt{Results: []ast.Expr{resultExpr, ast.NewIdent("true")}}), nil
}
