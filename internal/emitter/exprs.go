package emitter

import (
	"fmt"
	"go/ast"
	"go/token"

	"matchc/internal/pattern"
	"matchc/internal/surface"
	"matchc/matcherr"
)

func (e *Emitter) freshName(prefix string) string {
	e.tmp++
	return fmt.Sprintf("%s%d", prefix, e.tmp)
}

func ident(t pattern.Temp) ast.Expr { return ast.NewIdent(string(t)) }

func lenCall(t pattern.Temp) ast.Expr {
	return &ast.CallExpr{Fun: ast.NewIdent("len"), Args: []ast.Expr{ident(t)}}
}

func intLit(n int) ast.Expr {
	return &ast.BasicLit{Kind: token.INT, Value: fmt.Sprint(n)}
}

// fetchAssign renders a fetch pattern's effect as `tN := <expr>`.
func (e *Emitter) fetchAssign(f *pattern.Pattern) (ast.Stmt, error) {
	expr, err := fetchValueExpr(f)
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{
		Lhs: []ast.Expr{ident(f.Result)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{expr},
	}, nil
}

func fetchValueExpr(f *pattern.Pattern) (ast.Expr, error) {
	switch f.Kind {
	case pattern.KFetchField:
		return &ast.SelectorExpr{X: ident(f.Input), Sel: ast.NewIdent(f.Field)}, nil
	case pattern.KFetchIndex:
		if f.Index >= 1 {
			return &ast.IndexExpr{X: ident(f.Input), Index: intLit(f.Index - 1)}, nil
		}
		return &ast.IndexExpr{X: ident(f.Input), Index: &ast.BinaryExpr{
			X: lenCall(f.Input), Op: token.ADD, Y: intLit(f.Index),
		}}, nil
	case pattern.KFetchRange:
		high := &ast.BinaryExpr{X: lenCall(f.Input), Op: token.SUB, Y: intLit(f.FromEnd)}
		return &ast.SliceExpr{X: ident(f.Input), Low: intLit(f.First), High: high}, nil
	case pattern.KFetchLength:
		return lenCall(f.Input), nil
	case pattern.KFetchExpression:
		ge, ok := f.Value.(surface.GoExpr)
		if !ok {
			return nil, matcherr.New(matcherr.KindUnrecognizedCase, "fetch expression is not host-renderable")
		}
		return ge.Expr, nil
	default:
		return nil, matcherr.Newf(matcherr.KindUnrecognizedCase, "kind %s is not a fetch", f.Kind)
	}
}

// typeArgExpr renders a TypeTest's type as the generic argument
// matchrt.Is takes. The tuple/sequence rows of the dispatch table use
// the synthetic shape tags oracle.Named("tuple") and
// oracle.Named("sequence") (internal/binder/dispatch.go's
// bindSequenceLike) rather than a type the oracle resolved, so those two
// names aren't valid Go identifiers and are rendered as the shape they
// actually stand for instead.
func typeArgExpr(name string) ast.Expr {
	switch name {
	case "tuple", "sequence":
		return &ast.ArrayType{Elt: ast.NewIdent("any")}
	default:
		return ast.NewIdent(name)
	}
}

// testExpr renders a test pattern's boolean condition.
func testExpr(t *pattern.Pattern) (ast.Expr, error) {
	switch t.Kind {
	case pattern.KEqualValueTest:
		ge, ok := t.Value.(surface.GoExpr)
		if !ok {
			return nil, matcherr.New(matcherr.KindUnrecognizedCase, "equality operand is not host-renderable")
		}
		return &ast.CallExpr{Fun: matchrtSel("Equal"), Args: []ast.Expr{ident(t.Input), ge.Expr}}, nil
	case pattern.KTypeTest:
		call := &ast.CallExpr{
			Fun:  &ast.IndexExpr{X: matchrtSel("Is"), Index: typeArgExpr(t.Type.Name())},
			Args: []ast.Expr{ident(t.Input)},
		}
		if t.Inverted {
			return &ast.UnaryExpr{Op: token.NOT, X: call}, nil
		}
		return call, nil
	case pattern.KRelationalTest:
		op := token.EQL
		if t.Op == pattern.RelGE {
			op = token.GEQ
		}
		return &ast.BinaryExpr{X: ident(t.Input), Op: op, Y: intLit(t.Const)}, nil
	case pattern.KWhereTest:
		if t.Inverted {
			return &ast.UnaryExpr{Op: token.NOT, X: ident(t.Input)}, nil
		}
		return ident(t.Input), nil
	default:
		return nil, matcherr.Newf(matcherr.KindUnrecognizedCase, "kind %s is not a test", t.Kind)
	}
}
