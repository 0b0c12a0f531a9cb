package matchc

import (
	"fmt"
	"go/ast"
	"go/token"
	"reflect"
	"strconv"

	"matchc/matchrt"
)

// Dog, Cat and Foo are the concrete Go types the interpreter below runs
// emitted match code against; their field names mirror testOracle's and
// the scenario fixtures' TypeInfo so a FetchField's rendered selector
// (t1.Name, t1.X, ...) resolves to a real, exported struct field (reflect
// cannot return an unexported field's value, so every field here is
// capitalized on purpose).
type Dog struct{ Name string }
type Cat struct{ Name string }
type Foo struct{ X, Y int }

// env is a lexical scope for the interpreter below: a flat variable map
// chained to its defining scope's parent, mirroring how the emitted
// code's nested if/closure bodies see the outer temporaries they read
// but shadow anything they declare themselves.
type env struct {
	vars   map[string]any
	parent *env
}

func newEnv(parent *env) *env { return &env{vars: map[string]any{}, parent: parent} }

func (e *env) define(name string, v any) { e.vars[name] = v }

func (e *env) assign(name string, v any) {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}

func (e *env) get(name string) any {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	panic("interpreter: undefined identifier " + name)
}

// runMatch interprets stmts — compile_match's or compile_match_reference's
// output — against bindings (the scrutinee and any caller-scope names an
// interpolation pattern reads) and returns resultVar's final value, or the
// error a failed match panicked with. It exists to let a test assert on
// the actual value a compiled match expression produces rather than only
// on the shape of the ast.Stmt list, without ever invoking the Go
// toolchain: it is a tree-walking evaluator over exactly the statement
// and expression shapes internal/emitter and internal/reference emit.
func runMatch(stmts []ast.Stmt, resultVar string, bindings map[string]any) (value any, matchErr error) {
	top := newEnv(nil)
	for name, v := range bindings {
		top.define(name, v)
	}
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				matchErr = err
			} else {
				matchErr = fmt.Errorf("%v", r)
			}
		}
	}()
	execStmts(stmts, top)
	return top.get(resultVar), nil
}

// execStmts runs stmts against e until one of them returns, yielding its
// result values (read by evalMulti when a caller passes those results
// straight along as its own, the same pass-through the emitter's
// returnCall relies on).
func execStmts(stmts []ast.Stmt, e *env) (ret []any, done bool) {
	for _, s := range stmts {
		if ret, done := execStmt(s, e); done {
			return ret, true
		}
	}
	return nil, false
}

func execStmt(s ast.Stmt, e *env) (ret []any, done bool) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		execAssign(st, e)
		return nil, false
	case *ast.ExprStmt:
		evalExpr(st.X, e)
		return nil, false
	case *ast.DeclStmt:
		gd := st.Decl.(*ast.GenDecl)
		for _, spec := range gd.Specs {
			vs := spec.(*ast.ValueSpec)
			for _, n := range vs.Names {
				e.define(n.Name, nil)
			}
		}
		return nil, false
	case *ast.IfStmt:
		scope := e
		if st.Init != nil {
			scope = newEnv(e)
			execStmt(st.Init, scope)
		}
		if evalExpr(st.Cond, scope).(bool) {
			return execStmts(st.Body.List, newEnv(scope))
		}
		if st.Else != nil {
			if block, ok := st.Else.(*ast.BlockStmt); ok {
				return execStmts(block.List, newEnv(scope))
			}
			return execStmt(st.Else, scope)
		}
		return nil, false
	case *ast.ReturnStmt:
		if len(st.Results) == 1 {
			return evalMulti(st.Results[0], e), true
		}
		vals := make([]any, len(st.Results))
		for i, r := range st.Results {
			vals[i] = evalExpr(r, e)
		}
		return vals, true
	default:
		panic(fmt.Sprintf("interpreter: unsupported statement %T", s))
	}
}

func execAssign(a *ast.AssignStmt, e *env) {
	set := e.define
	if a.Tok == token.ASSIGN {
		set = e.assign
	}
	var vals []any
	if len(a.Rhs) == 1 && len(a.Lhs) > 1 {
		vals = evalMulti(a.Rhs[0], e)
	} else {
		vals = make([]any, len(a.Rhs))
		for i, r := range a.Rhs {
			vals[i] = evalExpr(r, e)
		}
	}
	for i, lhs := range a.Lhs {
		set(lhs.(*ast.Ident).Name, vals[i])
	}
}

// evalMulti evaluates ex in a context that may consume more than one
// result: the two-value result/matched and value/ok assignments
// compile_match and compile_match_reference emit, and the pass-through
// `return <call>` the emitter uses to hand a nested node's outcome
// straight back as its own.
func evalMulti(ex ast.Expr, e *env) []any {
	if call, ok := ex.(*ast.CallExpr); ok {
		return evalCall(call, e)
	}
	return []any{evalExpr(ex, e)}
}

func evalExpr(ex ast.Expr, e *env) any {
	switch expr := ex.(type) {
	case *ast.Ident:
		switch expr.Name {
		case "nil":
			return nil
		case "true":
			return true
		case "false":
			return false
		default:
			return e.get(expr.Name)
		}
	case *ast.BasicLit:
		switch expr.Kind {
		case token.STRING:
			v, err := strconv.Unquote(expr.Value)
			if err != nil {
				panic(err)
			}
			return v
		case token.INT:
			n, err := strconv.Atoi(expr.Value)
			if err != nil {
				panic(err)
			}
			return n
		default:
			panic(fmt.Sprintf("interpreter: unsupported literal kind %v", expr.Kind))
		}
	case *ast.ParenExpr:
		return evalExpr(expr.X, e)
	case *ast.UnaryExpr:
		if expr.Op == token.NOT {
			return !evalExpr(expr.X, e).(bool)
		}
		panic(fmt.Sprintf("interpreter: unsupported unary op %v", expr.Op))
	case *ast.BinaryExpr:
		return evalBinary(expr, e)
	case *ast.SelectorExpr:
		base := evalExpr(expr.X, e)
		rv := reflect.ValueOf(base).FieldByName(expr.Sel.Name)
		if !rv.IsValid() {
			panic(fmt.Sprintf("interpreter: no field %q on %T", expr.Sel.Name, base))
		}
		return rv.Interface()
	case *ast.IndexExpr:
		base := reflect.ValueOf(evalExpr(expr.X, e))
		return base.Index(evalExpr(expr.Index, e).(int)).Interface()
	case *ast.SliceExpr:
		base := reflect.ValueOf(evalExpr(expr.X, e))
		low, high := 0, base.Len()
		if expr.Low != nil {
			low = evalExpr(expr.Low, e).(int)
		}
		if expr.High != nil {
			high = evalExpr(expr.High, e).(int)
		}
		return base.Slice(low, high).Interface()
	case *ast.CompositeLit:
		vals := make([]any, len(expr.Elts))
		for i, el := range expr.Elts {
			vals[i] = evalExpr(el, e)
		}
		return vals
	case *ast.FuncLit:
		return func() []any { ret, _ := execStmts(expr.Body.List, newEnv(e)); return ret }
	case *ast.CallExpr:
		return evalCall(expr, e)[0]
	default:
		panic(fmt.Sprintf("interpreter: unsupported expression %T", ex))
	}
}

func evalBinary(expr *ast.BinaryExpr, e *env) any {
	switch expr.Op {
	case token.LAND:
		return evalExpr(expr.X, e).(bool) && evalExpr(expr.Y, e).(bool)
	case token.LOR:
		return evalExpr(expr.X, e).(bool) || evalExpr(expr.Y, e).(bool)
	case token.EQL:
		return anyEqual(evalExpr(expr.X, e), evalExpr(expr.Y, e))
	case token.NEQ:
		return !anyEqual(evalExpr(expr.X, e), evalExpr(expr.Y, e))
	case token.GEQ:
		return asInt(evalExpr(expr.X, e)) >= asInt(evalExpr(expr.Y, e))
	case token.GTR:
		return asInt(evalExpr(expr.X, e)) > asInt(evalExpr(expr.Y, e))
	case token.ADD:
		return asInt(evalExpr(expr.X, e)) + asInt(evalExpr(expr.Y, e))
	case token.SUB:
		return asInt(evalExpr(expr.X, e)) - asInt(evalExpr(expr.Y, e))
	default:
		panic(fmt.Sprintf("interpreter: unsupported binary op %v", expr.Op))
	}
}

func anyEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

func asInt(v any) int {
	if n, ok := v.(int); ok {
		return n
	}
	panic(fmt.Sprintf("interpreter: expected int, got %T", v))
}

func evalCall(c *ast.CallExpr, e *env) []any {
	switch fun := c.Fun.(type) {
	case *ast.Ident:
		switch fun.Name {
		case "panic":
			panic(evalExpr(c.Args[0], e))
		case "len":
			return []any{reflect.ValueOf(evalExpr(c.Args[0], e)).Len()}
		default:
			closure, ok := e.get(fun.Name).(func() []any)
			if !ok {
				panic("interpreter: " + fun.Name + " is not a callable closure")
			}
			return closure()
		}
	case *ast.FuncLit:
		ret, _ := execStmts(fun.Body.List, newEnv(e))
		return ret
	case *ast.SelectorExpr:
		return []any{evalMatchrtCall(fun.Sel.Name, c.Args, e)}
	case *ast.IndexExpr:
		sel, ok := fun.X.(*ast.SelectorExpr)
		if !ok {
			panic(fmt.Sprintf("interpreter: unsupported generic call target %T", fun.X))
		}
		return []any{evalMatchrtGenericCall(sel.Sel.Name, fun.Index, c.Args, e)}
	default:
		panic(fmt.Sprintf("interpreter: unsupported call target %T", c.Fun))
	}
}

func evalMatchrtCall(name string, args []ast.Expr, e *env) any {
	switch name {
	case "Fail":
		return matchrt.Fail(evalExpr(args[0], e))
	case "CheckTypeBinding":
		return matchrt.CheckTypeBinding(
			evalExpr(args[0], e).(string),
			evalExpr(args[1], e).(string),
			evalExpr(args[2], e).(string),
		)
	case "Equal":
		return matchrt.Equal(evalExpr(args[0], e), evalExpr(args[1], e))
	default:
		panic("interpreter: unsupported matchrt." + name)
	}
}

// evalMatchrtGenericCall handles matchrt.Is[T](v), the one matchrt
// function the emitters call with an explicit type argument. T is either
// a real registered type's name (Dog, Cat, Foo) or the []any shape
// internal/emitter and internal/reference's typeArgExpr renders for a
// tuple/sequence pattern's synthetic shape tag.
func evalMatchrtGenericCall(name string, typeArg ast.Expr, args []ast.Expr, e *env) any {
	if name != "Is" {
		panic("interpreter: unsupported generic matchrt." + name)
	}
	v := evalExpr(args[0], e)
	switch typeArgName(typeArg) {
	case "Dog":
		return matchrt.Is[Dog](v)
	case "Cat":
		return matchrt.Is[Cat](v)
	case "Foo":
		return matchrt.Is[Foo](v)
	case "[]any":
		return matchrt.Is[[]any](v)
	default:
		panic("interpreter: unsupported Is[" + typeArgName(typeArg) + "]")
	}
}

func typeArgName(t ast.Expr) string {
	switch n := t.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.ArrayType:
		return "[]any"
	default:
		return fmt.Sprintf("%T", t)
	}
}
