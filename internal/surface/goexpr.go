package surface

import (
	"go/ast"
	"go/format"
	"go/token"
	"strings"
)

// GoExpr is the HostExpr implementation used when the host language is Go
// itself: guards, interpolation payloads, and arm results are ordinary
// go/ast.Expr trees built by whatever produced the surface AST (in gala's
// case, its own expression transformer; here, a caller or the hardcoded
// demo fixtures in cmd/matchc). Free is the set of pattern-variable names this expression
// is known to reference, supplied by the producer rather than recomputed,
// since only the producer knows which identifiers are pattern variables
// versus ordinary Go names already in scope.
type GoExpr struct {
	Expr ast.Expr
	Free []string
}

func (g GoExpr) FreeVars() []string { return g.Free }

// Key renders the expression's source form deterministically. go/format
// is used purely as a stringifier here, the same tool gala's generator
// uses to render its final output (internal/transpiler/generator).
func (g GoExpr) Key() string {
	var sb strings.Builder
	if err := format.Node(&sb, token.NewFileSet(), g.Expr); err != nil {
		return ""
	}
	return sb.String()
}

func (g GoExpr) Rewrite(subst map[string]string) HostExpr {
	if len(subst) == 0 {
		return g
	}
	remaining := make([]string, 0, len(g.Free))
	renamed := false
	for _, name := range g.Free {
		if _, ok := subst[name]; ok {
			renamed = true
		} else {
			remaining = append(remaining, name)
		}
	}
	if !renamed {
		return g
	}
	return GoExpr{Expr: cloneExpr(g.Expr, subst), Free: remaining}
}

// cloneExpr deep-copies expr, renaming every *ast.Ident whose Name is a key
// of subst. It handles the expression shapes that actually appear in guards
// and results produced by the kinds of host code this package's callers
// build (arithmetic, comparisons, calls, selectors, indexing, literals);
// anything else is returned unchanged since it cannot contain a reference
// to a pattern variable bound by this compiler.
func cloneExpr(expr ast.Expr, subst map[string]string) ast.Expr {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.Ident:
		if newName, ok := subst[e.Name]; ok {
			return ast.NewIdent(newName)
		}
		return e
	case *ast.BasicLit:
		return e
	case *ast.ParenExpr:
		return &ast.ParenExpr{X: cloneExpr(e.X, subst)}
	case *ast.StarExpr:
		return &ast.StarExpr{X: cloneExpr(e.X, subst)}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: e.Op, X: cloneExpr(e.X, subst)}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{X: cloneExpr(e.X, subst), Op: e.Op, Y: cloneExpr(e.Y, subst)}
	case *ast.SelectorExpr:
		return &ast.SelectorExpr{X: cloneExpr(e.X, subst), Sel: e.Sel}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: cloneExpr(e.X, subst), Index: cloneExpr(e.Index, subst)}
	case *ast.SliceExpr:
		return &ast.SliceExpr{
			X: cloneExpr(e.X, subst), Low: cloneExpr(e.Low, subst),
			High: cloneExpr(e.High, subst), Max: cloneExpr(e.Max, subst), Slice3: e.Slice3,
		}
	case *ast.TypeAssertExpr:
		return &ast.TypeAssertExpr{X: cloneExpr(e.X, subst), Type: e.Type}
	case *ast.CallExpr:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = cloneExpr(a, subst)
		}
		return &ast.CallExpr{Fun: cloneExpr(e.Fun, subst), Args: args, Ellipsis: e.Ellipsis}
	case *ast.KeyValueExpr:
		return &ast.KeyValueExpr{Key: cloneExpr(e.Key, subst), Value: cloneExpr(e.Value, subst)}
	case *ast.CompositeLit:
		elts := make([]ast.Expr, len(e.Elts))
		for i, el := range e.Elts {
			elts[i] = cloneExpr(el, subst)
		}
		return &ast.CompositeLit{Type: e.Type, Elts: elts}
	default:
		return expr
	}
}
