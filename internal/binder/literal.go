package binder

import (
	"fmt"
	"go/ast"
	"go/token"

	"matchc/internal/pattern"
	"matchc/internal/surface"
)

// identExpr wraps a bare temporary reference as a HostExpr, used when an
// already-bound identifier pattern needs to compare the new occurrence
// against the temporary its first occurrence bound (spec §4.2's "EqualValueTest(input, t, {v↦t})" row).
func identExpr(t pattern.Temp) surface.HostExpr {
	return surface.GoExpr{Expr: ast.NewIdent(string(t))}
}

func identAST(name string) ast.Expr {
	return ast.NewIdent(name)
}

// literalHostExpr renders a raw Go literal value (as a surface pattern's
// LitValue) into the same go/ast shape the host's own literals would
// produce, so it compares and prints exactly like one (spec §4.2's
// literal row).
func literalHostExpr(v any) surface.HostExpr {
	switch val := v.(type) {
	case nil:
		return surface.GoExpr{Expr: ast.NewIdent("nil")}
	case bool:
		if val {
			return surface.GoExpr{Expr: ast.NewIdent("true")}
		}
		return surface.GoExpr{Expr: ast.NewIdent("false")}
	case string:
		return surface.GoExpr{Expr: &ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", val)}}
	case int:
		return surface.GoExpr{Expr: &ast.BasicLit{Kind: token.INT, Value: fmt.Sprint(val)}}
	case int64:
		return surface.GoExpr{Expr: &ast.BasicLit{Kind: token.INT, Value: fmt.Sprint(val)}}
	case float64:
		return surface.GoExpr{Expr: &ast.BasicLit{Kind: token.FLOAT, Value: fmt.Sprint(val)}}
	default:
		return surface.GoExpr{Expr: &ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", fmt.Sprint(val))}}
	}
}
