package commands

import (
	"go/ast"

	"matchc/internal/oracle"
	"matchc/internal/surface"
)

// animalOracle is the fixed type oracle every fixture compiles against: two
// sibling constructors sharing a common supertype, enough to exercise the
// type-test refinement the simplifier does between two arms (spec §4.4).
func animalOracle() *oracle.StaticOracle {
	return oracle.NewStaticOracle(map[string]oracle.TypeInfo{
		"Dog": {Fields: []string{"Name", "Breed"}, FieldTypes: map[string]string{"Name": "string", "Breed": "string"}, Supers: []string{"Animal"}},
		"Cat": {Fields: []string{"Name", "Lives"}, FieldTypes: map[string]string{"Name": "string", "Lives": "int"}, Supers: []string{"Animal"}},
	})
}

func identPat(name string) *surface.Pattern { return &surface.Pattern{Kind: surface.Ident, Name: name} }
func wildcardPat() *surface.Pattern          { return &surface.Pattern{Kind: surface.Wildcard} }

func callPat(callee string, args ...*surface.Pattern) *surface.Pattern {
	as := make([]surface.Arg, len(args))
	for i, a := range args {
		as[i] = surface.Arg{Pattern: a}
	}
	return &surface.Pattern{Kind: surface.Call, Callee: callee, Args: as}
}

func resultExpr(names ...string) surface.HostExpr {
	if len(names) == 1 {
		return surface.GoExpr{Expr: ast.NewIdent(names[0]), Free: names}
	}
	// Render a tuple-shaped result as a composite literal referencing every
	// name, so fixtures with more than one bound variable still produce a
	// single expression statement.
	elts := make([]ast.Expr, len(names))
	for i, n := range names {
		elts[i] = ast.NewIdent(n)
	}
	return surface.GoExpr{Expr: &ast.CompositeLit{Elts: elts}, Free: names}
}

func resultBody(names ...string) []surface.Stmt {
	return []surface.Stmt{surface.ExprStmt{Expr: resultExpr(names...)}}
}

// fixture bundles one scrutinee-and-arms example that CompileMatch,
// CompileMatchReference, CompileIsMatch and CompileAssignment can each be
// demonstrated against.
type fixture struct {
	name        string
	describe    string
	scrutinee   func() ast.Expr
	arms        func() []surface.Arm
	soloPattern func() *surface.Pattern // the pattern compile_is_match/compile_assignment try
}

var fixtures = []fixture{
	{
		name:     "dog-cat",
		describe: "two sibling constructors, one field captured each, wildcard fallback",
		scrutinee: func() ast.Expr {
			return ast.NewIdent("pet")
		},
		arms: func() []surface.Arm {
			return []surface.Arm{
				{Index: 0, Pattern: callPat("Dog", identPat("name"), wildcardPat()), Body: resultBody("name")},
				{Index: 1, Pattern: callPat("Cat", identPat("name"), wildcardPat()), Body: resultBody("name")},
				{Index: 2, Pattern: wildcardPat(), Body: resultBody()},
			}
		},
		soloPattern: func() *surface.Pattern {
			return callPat("Dog", identPat("name"), wildcardPat())
		},
	},
	{
		name:     "repeated-var",
		describe: "the same variable bound twice, matching only when both sides are equal (P4)",
		scrutinee: func() ast.Expr {
			return ast.NewIdent("pair")
		},
		arms: func() []surface.Arm {
			seq := &surface.Pattern{Kind: surface.Sequence, Elements: []*surface.Pattern{identPat("x"), identPat("x")}}
			return []surface.Arm{
				{Index: 0, Pattern: seq, Body: resultBody("x")},
				{Index: 1, Pattern: wildcardPat(), Body: resultBody()},
			}
		},
		soloPattern: func() *surface.Pattern {
			return &surface.Pattern{Kind: surface.Sequence, Elements: []*surface.Pattern{identPat("x"), identPat("x")}}
		},
	},
}

func findFixture(name string) (fixture, bool) {
	for _, f := range fixtures {
		if f.name == name {
			return f, true
		}
	}
	return fixture{}, false
}
