// Package reference implements the brute-force reference matcher spec §1
// calls out as an external collaborator and spec §6 exposes as
// compile_match_reference: each arm becomes its own straight-line
// if/else chain, with no fetch sharing and no automaton at all. It exists
// to check the deduplicating compiler (internal/automaton + emitter)
// against a second, structurally unrelated implementation of the same
// bound-pattern semantics (spec P1).
package reference

import (
	"fmt"
	"go/ast"
	"go/token"

	"matchc/internal/binder"
	"matchc/internal/pattern"
	"matchc/internal/surface"
	"matchc/matcherr"
)

// Compiler renders one arm at a time into a closure that returns
// (value, true) if the arm's pattern and guard hold, or (nil, false)
// otherwise, and tries each arm only while no earlier arm has matched
// (||-style short-circuiting).
type Compiler struct {
	tmp int
}

// New returns a reference Compiler.
func New() *Compiler { return &Compiler{} }

// Compile lowers assertions, root's already-bound arms (in
// binder.BindArm's output form, never passed through the automaton
// builder or simplifier) into the scrutinee-assign-then-try-each-arm
// statement list compile_match_reference produces.
func (c *Compiler) Compile(resultVar string, scrutinee ast.Expr, inputTemp pattern.Temp, assertions []binder.Assertion, arms []Arm) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	stmts = append(stmts, &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(string(inputTemp))},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{scrutinee},
	})
	stmts = append(stmts, assertionStmts(scrutinee, assertions)...)

	matchedVar := c.fresh("matched")
	stmts = append(stmts, &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(resultVar), ast.NewIdent(matchedVar)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{ast.NewIdent("nil"), ast.NewIdent("false")},
	})

	for _, arm := range arms {
		tryExpr, err := c.compileArm(arm)
		if err != nil {
			return nil, err
		}
		valueVar, okVar := c.fresh("v"), c.fresh("ok")
		stmts = append(stmts,
			&ast.IfStmt{
				Cond: &ast.UnaryExpr{Op: token.NOT, X: ast.NewIdent(matchedVar)},
				Body: &ast.BlockStmt{List: []ast.Stmt{
					&ast.IfStmt{
						Init: &ast.AssignStmt{
							Lhs: []ast.Expr{ast.NewIdent(valueVar), ast.NewIdent(okVar)},
							Tok: token.DEFINE,
							Rhs: []ast.Expr{tryExpr},
						},
						Cond: ast.NewIdent(okVar),
						Body: &ast.BlockStmt{List: []ast.Stmt{
							&ast.AssignStmt{
								Lhs: []ast.Expr{ast.NewIdent(resultVar), ast.NewIdent(matchedVar)},
								Tok: token.ASSIGN,
								Rhs: []ast.Expr{ast.NewIdent(valueVar), ast.NewIdent("true")},
							},
						}},
					},
				}},
			},
		)
	}

	stmts = append(stmts, &ast.IfStmt{
		Cond: &ast.UnaryExpr{Op: token.NOT, X: ast.NewIdent(matchedVar)},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.ExprStmt{X: &ast.CallExpr{
				Fun:  ast.NewIdent("panic"),
				Args: []ast.Expr{&ast.CallExpr{Fun: matchrtSel("Fail"), Args: []ast.Expr{ast.NewIdent(string(inputTemp))}}},
			}},
		}},
	})
	return stmts, nil
}

// Arm is one arm's already-bound pattern plus the body that produces its
// result, the same shape automaton.ArmResult carries but kept separate
// so this package never needs to import automaton.
type Arm struct {
	Bound *pattern.Pattern
	Body  []surface.Stmt
	Loc   matcherr.Location
}

func (c *Compiler) compileArm(arm Arm) (ast.Expr, error) {
	body, err := c.successStmts(arm.Body, arm.Loc)
	if err != nil {
		return nil, err
	}
	stmts, err := c.emit(arm.Bound, func() ([]ast.Stmt, error) { return body, nil })
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, &ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("nil"), ast.NewIdent("false")}})
	return &ast.CallExpr{Fun: &ast.FuncLit{
		Type: &ast.FuncType{Params: &ast.FieldList{}, Results: resultSig()},
		Body: &ast.BlockStmt{List: stmts},
	}}, nil
}

// EmitPattern exposes the same one-pattern-at-a-time rendering Compile
// chains across arms, for callers that only ever have a single pattern to
// try (compile_is_match, compile_assignment) and so have no arm list to
// deduplicate against. cont's statements run, spliced in place, exactly
// when p holds; otherwise control falls through to whatever the caller
// appends after the returned statements.
func (c *Compiler) EmitPattern(p *pattern.Pattern, cont func() ([]ast.Stmt, error)) ([]ast.Stmt, error) {
	return c.emit(p, cont)
}

// emit renders p as statements that run cont's statements when p holds
// and simply fall through to whatever follows otherwise: the core of the
// un-deduplicated if/else chain.
func (c *Compiler) emit(p *pattern.Pattern, cont func() ([]ast.Stmt, error)) ([]ast.Stmt, error) {
	switch p.Kind {
	case pattern.KTrue:
		return cont()
	case pattern.KFalse:
		return nil, nil
	case pattern.KAnd:
		return c.emitAnd(p.Subs, 0, cont)
	case pattern.KOr:
		return c.emitOr(p.Subs, cont)
	case pattern.KFetchField, pattern.KFetchIndex, pattern.KFetchRange, pattern.KFetchLength, pattern.KFetchExpression:
		assign, err := fetchAssign(p)
		if err != nil {
			return nil, err
		}
		rest, err := cont()
		if err != nil {
			return nil, err
		}
		return append([]ast.Stmt{assign}, rest...), nil
	default:
		cond, err := testExpr(p)
		if err != nil {
			return nil, err
		}
		rest, err := cont()
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{&ast.IfStmt{Cond: cond, Body: &ast.BlockStmt{List: rest}}}, nil
	}
}

func (c *Compiler) emitAnd(subs []*pattern.Pattern, idx int, cont func() ([]ast.Stmt, error)) ([]ast.Stmt, error) {
	if idx == len(subs) {
		return cont()
	}
	return c.emit(subs[idx], func() ([]ast.Stmt, error) {
		return c.emitAnd(subs, idx+1, cont)
	})
}

// emitOr tries each subpattern in order; whichever first holds runs cont
// and marks a local flag so later subpatterns are skipped (spec's "first
// matching subpattern wins").
func (c *Compiler) emitOr(subs []*pattern.Pattern, cont func() ([]ast.Stmt, error)) ([]ast.Stmt, error) {
	okVar := c.fresh("orOk")
	stmts := []ast.Stmt{&ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(okVar)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{ast.NewIdent("false")},
	}}
	for _, sub := range subs {
		branch, err := c.emit(sub, func() ([]ast.Stmt, error) {
			inner, err := cont()
			if err != nil {
				return nil, err
			}
			return append(inner, &ast.AssignStmt{
				Lhs: []ast.Expr{ast.NewIdent(okVar)}, Tok: token.ASSIGN, Rhs: []ast.Expr{ast.NewIdent("true")},
			}), nil
		})
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, &ast.IfStmt{
			Cond: &ast.UnaryExpr{Op: token.NOT, X: ast.NewIdent(okVar)},
			Body: &ast.BlockStmt{List: branch},
		})
	}
	return stmts, nil
}

func (c *Compiler) successStmts(body []surface.Stmt, loc matcherr.Location) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	var result ast.Expr = ast.NewIdent("nil")
	for i, s := range body {
		switch st := s.(type) {
		case surface.ExprStmt:
			ge, ok := st.Expr.(surface.GoExpr)
			if !ok {
				return nil, matcherr.NewAt(matcherr.KindUnrecognizedCase, loc, "arm body expression is not host-renderable")
			}
			if i == len(body)-1 {
				result = ge.Expr
			} else {
				stmts = append(stmts, &ast.ExprStmt{X: ge.Expr})
			}
		case surface.MatchReturnStmt:
			ge, ok := st.Value.(surface.GoExpr)
			if !ok {
				return nil, matcherr.NewAt(matcherr.KindUnrecognizedCase, loc, "match_return value is not host-renderable")
			}
			return append(stmts, &ast.ReturnStmt{Results: []ast.Expr{ge.Expr, ast.NewIdent("true")}}), nil
		case surface.MatchFailStmt:
			return append(stmts, &ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("nil"), ast.NewIdent("false")}}), nil
		}
	}
	return append(stmts, &ast.ReturnStmt{Results: []ast.Expr{result, ast.NewIdent("true")}}), nil
}

func (c *Compiler) fresh(prefix string) string {
	c.tmp++
	return fmt.Sprintf("%s%d", prefix, c.tmp)
}

func resultSig() *ast.FieldList {
	return &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("any")}, {Type: ast.NewIdent("bool")}}}
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
