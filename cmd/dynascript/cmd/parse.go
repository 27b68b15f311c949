package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cwbudde/dynascript/internal/ast"
	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/internal/parser"
	"github.com/spf13/cobra"
)

var parseExpression bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse dynascript source and dump the AST",
	Long: `Parse dynascript source code and print its Abstract Syntax Tree.

If no file is given, reads from stdin. Use -e to parse a single
expression from the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVarP(&parseExpression, "expression", "e", false, "parse an expression given on the command line")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input, filename string

	switch {
	case parseExpression:
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input, filename = args[0], "<expression>"
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input, filename = string(data), args[0]
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input, filename = string(data), "<stdin>"
	}

	p := parser.New(input)
	prog, err := p.Parse()
	if err != nil {
		if de, ok := err.(*diag.Error); ok {
			fmt.Fprintln(os.Stderr, de.WithSource(input, filename).Format(false))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return fmt.Errorf("parsing failed")
	}

	fmt.Printf("Program (%d statements, %d functions)\n", len(prog.Statements), len(prog.Functions))
	for _, stmt := range prog.Statements {
		dumpNode(stmt, 1)
	}
	return nil
}

func indent(n int) string { return strings.Repeat("  ", n) }

// dumpNode renders a single AST node and recurses into its children.
// It covers every Stmt/Expr kind the evaluator's own type switch
// handles, falling back to a raw %T for anything new.
func dumpNode(node ast.Node, depth int) {
	d := indent(depth)
	switch n := node.(type) {
	case *ast.ExprStmt:
		fmt.Printf("%sExprStmt\n", d)
		dumpNode(n.X, depth+1)
	case *ast.VarDecl:
		kind := "let"
		if n.Const {
			kind = "const"
		}
		fmt.Printf("%sVarDecl(%s %s)\n", d, kind, n.Name)
		if n.Init != nil {
			dumpNode(n.Init, depth+1)
		}
	case *ast.Assignment:
		fmt.Printf("%sAssignment\n", d)
		fmt.Printf("%s  target:\n", d)
		dumpNode(n.Target, depth+2)
		fmt.Printf("%s  value:\n", d)
		dumpNode(n.Value, depth+2)
	case *ast.IfStmt:
		fmt.Printf("%sIfStmt\n", d)
		dumpNode(n.Cond, depth+1)
		dumpNode(n.Then, depth+1)
		if n.Else != nil {
			dumpNode(n.Else, depth+1)
		}
	case *ast.WhileStmt:
		fmt.Printf("%sWhileStmt\n", d)
		dumpNode(n.Cond, depth+1)
		dumpNode(n.Body, depth+1)
	case *ast.LoopStmt:
		fmt.Printf("%sLoopStmt\n", d)
		dumpNode(n.Body, depth+1)
	case *ast.DoStmt:
		fmt.Printf("%sDoStmt\n", d)
		dumpNode(n.Body, depth+1)
		dumpNode(n.Cond, depth+1)
	case *ast.ForStmt:
		fmt.Printf("%sForStmt(%s)\n", d, n.Var)
		dumpNode(n.Iterable, depth+1)
		dumpNode(n.Body, depth+1)
	case *ast.SwitchStmt:
		fmt.Printf("%sSwitchStmt (%d cases)\n", d, len(n.Cases))
		dumpNode(n.Subject, depth+1)
	case *ast.TryStmt:
		fmt.Printf("%sTryStmt\n", d)
		dumpNode(n.Body, depth+1)
	case *ast.ReturnStmt:
		fmt.Printf("%sReturnStmt\n", d)
		if n.Value != nil {
			dumpNode(n.Value, depth+1)
		}
	case *ast.ThrowStmt:
		fmt.Printf("%sThrowStmt\n", d)
		dumpNode(n.Value, depth+1)
	case *ast.ImportStmt:
		fmt.Printf("%sImportStmt(%s)\n", d, strings.Join(n.Path, "::"))
	case *ast.ExportStmt:
		fmt.Printf("%sExportStmt\n", d)
		dumpNode(n.Decl, depth+1)
	case *ast.ShareStmt:
		fmt.Printf("%sShareStmt(%s)\n", d, strings.Join(n.Names, ", "))
	case *ast.BlockStmt:
		fmt.Printf("%sBlockStmt (%d statements)\n", d, len(n.Statements))
		for _, s := range n.Statements {
			dumpNode(s, depth+1)
		}
	case *ast.NoOpStmt:
		fmt.Printf("%sNoOpStmt\n", d)
	case *ast.BreakStmt:
		fmt.Printf("%sBreakStmt\n", d)
	case *ast.ContinueStmt:
		fmt.Printf("%sContinueStmt\n", d)
	case *ast.FnDecl:
		fmt.Printf("%sFnDecl(%s, %d params)\n", d, n.Name, len(n.Params))
		dumpNode(n.Body, depth+1)

	case *ast.UnitLit:
		fmt.Printf("%sUnitLit\n", d)
	case *ast.BoolLit:
		fmt.Printf("%sBoolLit: %v\n", d, n.Value)
	case *ast.IntLit:
		fmt.Printf("%sIntLit: %d\n", d, n.Value)
	case *ast.FloatLit:
		fmt.Printf("%sFloatLit: %g\n", d, n.Value)
	case *ast.CharLit:
		fmt.Printf("%sCharLit: %q\n", d, n.Value)
	case *ast.StringLit:
		fmt.Printf("%sStringLit: %q\n", d, n.Value)
	case *ast.InterpString:
		fmt.Printf("%sInterpString (%d parts)\n", d, len(n.Parts))
	case *ast.ArrayLit:
		fmt.Printf("%sArrayLit (%d elements)\n", d, len(n.Elements))
		for _, el := range n.Elements {
			dumpNode(el, depth+1)
		}
	case *ast.MapLit:
		fmt.Printf("%sMapLit (%d entries)\n", d, len(n.Keys))
	case *ast.Variable:
		name := n.Name
		if len(n.Namespace) > 0 {
			name = strings.Join(n.Namespace, "::") + "::" + name
		}
		fmt.Printf("%sVariable: %s\n", d, name)
	case *ast.ThisExpr:
		fmt.Printf("%sThisExpr\n", d)
	case *ast.FuncCall:
		fmt.Printf("%sFuncCall(%s, %d args)\n", d, n.Name, len(n.Args))
		for _, a := range n.Args {
			dumpNode(a, depth+1)
		}
	case *ast.DotExpr:
		fmt.Printf("%sDotExpr\n", d)
		dumpNode(n.Target, depth+1)
	case *ast.IndexExpr:
		fmt.Printf("%sIndexExpr\n", d)
		dumpNode(n.Target, depth+1)
		dumpNode(n.Index, depth+1)
	case *ast.LogicalAnd:
		fmt.Printf("%sLogicalAnd\n", d)
		dumpNode(n.Left, depth+1)
		dumpNode(n.Right, depth+1)
	case *ast.LogicalOr:
		fmt.Printf("%sLogicalOr\n", d)
		dumpNode(n.Left, depth+1)
		dumpNode(n.Right, depth+1)
	case *ast.NullCoalesce:
		fmt.Printf("%sNullCoalesce\n", d)
		dumpNode(n.Left, depth+1)
		dumpNode(n.Right, depth+1)
	case *ast.CustomExpr:
		fmt.Printf("%sCustomExpr(%s)\n", d, n.Keyword)
	case *ast.ClosureExpr:
		fmt.Printf("%sClosureExpr (%d params, %d captured)\n", d, len(n.Params), len(n.Externals))
	case *ast.StmtExpr:
		fmt.Printf("%sStmtExpr\n", d)
		dumpNode(n.Stmt, depth+1)

	default:
		fmt.Printf("%s%T\n", d, node)
	}
}
