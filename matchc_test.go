package matchc

import (
	"go/ast"
	"go/token"
	"testing"

	"matchc/internal/oracle"
	"matchc/internal/surface"
	"matchc/matcherr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOracle() *oracle.StaticOracle {
	return oracle.NewStaticOracle(map[string]oracle.TypeInfo{
		"Dog": {Fields: []string{"Name"}, FieldTypes: map[string]string{"Name": "string"}, Supers: []string{"Animal"}},
		"Cat": {Fields: []string{"Name"}, FieldTypes: map[string]string{"Name": "string"}, Supers: []string{"Animal"}},
	})
}

func ident(name string) *surface.Pattern  { return &surface.Pattern{Kind: surface.Ident, Name: name} }
func wildcard() *surface.Pattern          { return &surface.Pattern{Kind: surface.Wildcard} }
func result(name string) surface.HostExpr { return surface.GoExpr{Expr: ast.NewIdent(name), Free: []string{name}} }

func callOf(callee string, args ...*surface.Pattern) *surface.Pattern {
	as := make([]surface.Arg, len(args))
	for i, a := range args {
		as[i] = surface.Arg{Pattern: a}
	}
	return &surface.Pattern{Kind: surface.Call, Callee: callee, Args: as}
}

func resultBody(name string) []surface.Stmt {
	return []surface.Stmt{surface.ExprStmt{Expr: result(name)}}
}

func TestCompileMatchFirstArmWins(t *testing.T) {
	o := testOracle()
	scrutinee := ast.NewIdent("pet")
	arms := []surface.Arm{
		{Index: 0, Pattern: callOf("Dog", ident("n")), Body: resultBody("n")},
		{Index: 1, Pattern: wildcard(), Body: []surface.Stmt{surface.ExprStmt{Expr: surface.GoExpr{
			Expr: &ast.BasicLit{Kind: token.STRING, Value: `"other"`},
		}}}},
	}

	stmts, warnings, err := CompileMatch(o, "result", scrutinee, arms)
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)
	assert.Empty(t, warnings)

	// A Dog matches both arms; the first one's result is the one returned.
	value, err := runMatch(stmts, "result", map[string]any{"pet": Dog{Name: "Rex"}})
	require.NoError(t, err)
	assert.Equal(t, "Rex", value)
}

func TestCompileMatchWarnsOnUnreachableArm(t *testing.T) {
	o := testOracle()
	scrutinee := ast.NewIdent("pet")
	arms := []surface.Arm{
		{Index: 0, Pattern: wildcard(), Body: []surface.Stmt{surface.ExprStmt{Expr: surface.GoExpr{Expr: ast.NewIdent("pet")}}}},
		{Index: 1, Pattern: callOf("Dog", ident("n")), Body: resultBody("n")},
	}

	_, warnings, err := CompileMatch(o, "result", scrutinee, arms)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, 1, warnings[0].ArmIndex)
}

func TestCompileMatchRejectsUndefinedVariableFromDisjunction(t *testing.T) {
	o := testOracle()
	scrutinee := ast.NewIdent("pet")
	orPattern := &surface.Pattern{
		Kind:  surface.Or,
		Left:  callOf("Dog", ident("n")),
		Right: callOf("Cat", wildcard()),
	}
	arms := []surface.Arm{
		{Index: 0, Pattern: orPattern, Body: resultBody("n")},
	}

	_, _, err := CompileMatch(o, "result", scrutinee, arms)
	require.Error(t, err)
	var ce *matcherr.CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, matcherr.KindUndefinedVariable, ce.Kind)
}

// TestCompileMatchAndReferenceAgreeOnShape is P1: the deduplicating
// compiler and the reference compiler return the same value on every
// input. It runs both compilers' statement lists through the tree-walking
// interpreter in interp_test.go — the only way to compare their actual
// runtime behavior without invoking the Go toolchain — against a matching
// Dog, a matching Cat and a value that matches neither.
func TestCompileMatchAndReferenceAgreeOnShape(t *testing.T) {
	o := testOracle()
	scrutinee := ast.NewIdent("pet")
	arms := []surface.Arm{
		{Index: 0, Pattern: callOf("Dog", ident("n")), Body: resultBody("n")},
		{Index: 1, Pattern: callOf("Cat", ident("n")), Body: resultBody("n")},
	}

	prod, warnings, err := CompileMatch(o, "result", scrutinee, arms)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotEmpty(t, prod)

	ref, err := CompileMatchReference(o, "result", scrutinee, arms)
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	for _, pet := range []any{Dog{Name: "Rex"}, Cat{Name: "Tom"}} {
		prodVal, prodErr := runMatch(prod, "result", map[string]any{"pet": pet})
		refVal, refErr := runMatch(ref, "result", map[string]any{"pet": pet})
		require.NoError(t, prodErr, "compile_match should match %v", pet)
		require.NoError(t, refErr, "compile_match_reference should match %v", pet)
		assert.Equal(t, prodVal, refVal, "both compilers must agree on the matched value for %v", pet)
	}

	_, prodErr := runMatch(prod, "result", map[string]any{"pet": "a rock"})
	_, refErr := runMatch(ref, "result", map[string]any{"pet": "a rock"})
	assert.Error(t, prodErr, "compile_match should fail to match a value that is neither Dog nor Cat")
	assert.Error(t, refErr, "compile_match_reference should fail to match a value that is neither Dog nor Cat")
}

func TestCompileIsMatchDeclaresBoundNames(t *testing.T) {
	o := testOracle()
	stmts, err := CompileIsMatch(o, "ok", ast.NewIdent("pet"), callOf("Dog", ident("n")))
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)

	var declared []string
	for _, s := range stmts {
		if d, ok := s.(*ast.DeclStmt); ok {
			for _, spec := range d.Decl.(*ast.GenDecl).Specs {
				for _, name := range spec.(*ast.ValueSpec).Names {
					declared = append(declared, name.Name)
				}
			}
		}
	}
	assert.Contains(t, declared, "ok")
	assert.Contains(t, declared, "n")
}

func TestCompileAssignmentSucceedsOrPanics(t *testing.T) {
	o := testOracle()
	stmts, err := CompileAssignment(o, ast.NewIdent("pet"), callOf("Dog", ident("n")))
	require.NoError(t, err)
	assert.NotEmpty(t, stmts)

	// The statement list ends in the not-matched check that panics.
	last, ok := stmts[len(stmts)-1].(*ast.IfStmt)
	require.True(t, ok)
	call, ok := last.Body.List[0].(*ast.ExprStmt).X.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "panic", call.Fun.(*ast.Ident).Name)

	value, err := runMatch(stmts, "n", map[string]any{"pet": Dog{Name: "Rex"}})
	require.NoError(t, err)
	assert.Equal(t, "Rex", value)
}
