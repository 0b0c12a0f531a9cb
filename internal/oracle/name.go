package oracle

import "go/ast"

// goExprName renders the dotted name of a bare identifier or selector
// chain (Foo, pkg.Foo), which is the only shape a `::T` type expression
// takes in the patterns this compiler recognizes (spec §4.2's dispatch
// table never names a type by anything more elaborate).
func goExprName(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.SelectorExpr:
		base := goExprName(n.X)
		if base == "" {
			return ""
		}
		return base + "." + n.Sel.Name
	default:
		return ""
	}
}
