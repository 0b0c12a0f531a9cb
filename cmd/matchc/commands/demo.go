package commands

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"matchc"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a built-in pattern-matching fixture through the compiler",
}

func init() {
	demoCmd.AddCommand(demoListCmd)
	demoCmd.AddCommand(demoRunCmd)
}

var demoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available fixtures",
	Run: func(cmd *cobra.Command, args []string) {
		for _, f := range fixtures {
			fmt.Printf("%-14s %s\n", f.name, f.describe)
		}
	},
}

var demoRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Compile a fixture with compile_match, compile_match_reference, compile_is_match and compile_assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, ok := findFixture(args[0])
		if !ok {
			return fmt.Errorf("unknown fixture %q, run %q to list the available ones", args[0], "matchc demo list")
		}
		o := animalOracle()

		matchStmts, warnings, err := matchc.CompileMatch(o, "result", f.scrutinee(), f.arms())
		if err != nil {
			return fmt.Errorf("compile_match: %w", err)
		}
		printSection("compile_match", matchStmts)
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, w.String())
		}

		refStmts, err := matchc.CompileMatchReference(o, "result", f.scrutinee(), f.arms())
		if err != nil {
			return fmt.Errorf("compile_match_reference: %w", err)
		}
		printSection("compile_match_reference", refStmts)

		isMatchStmts, err := matchc.CompileIsMatch(o, "ok", f.scrutinee(), f.soloPattern())
		if err != nil {
			return fmt.Errorf("compile_is_match: %w", err)
		}
		printSection("compile_is_match", isMatchStmts)

		assignStmts, err := matchc.CompileAssignment(o, f.scrutinee(), f.soloPattern())
		if err != nil {
			return fmt.Errorf("compile_assignment: %w", err)
		}
		printSection("compile_assignment", assignStmts)

		return nil
	},
}

func printSection(title string, stmts []ast.Stmt) {
	fmt.Printf("// %s\n", title)
	fmt.Println(strings.Repeat("-", len(title)+3))
	fmt.Println(renderBlock(stmts))
}

// renderBlock wraps stmts in a throwaway file holding one function so
// format.Node can print a bare statement list. The returned text is the
// whole formatted file: the package clause and the wrapping func are not
// stripped.
func renderBlock(stmts []ast.Stmt) string {
	fset := token.NewFileSet()
	file := &ast.File{
		Name: ast.NewIdent("demo"),
		Decls: []ast.Decl{&ast.FuncDecl{
			Name: ast.NewIdent("fn"),
			Type: &ast.FuncType{Params: &ast.FieldList{}},
			Body: &ast.BlockStmt{List: stmts},
		}},
	}
	var sb strings.Builder
	if err := format.Node(&sb, fset, file); err != nil {
		return fmt.Sprintf("<unprintable: %v>", err)
	}
	return sb.String()
}
