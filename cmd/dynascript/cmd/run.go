package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/dynascript/internal/diag"
	"github.com/cwbudde/dynascript/pkg/engine"
	"github.com/spf13/cobra"
)

var (
	evalExpr      string
	dumpAST       bool
	typeCheckFlag bool
	maxOps        int
	maxCallDepth  int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a dynascript file or expression",
	Long: `Execute a dynascript program from a file or inline expression.

Examples:
  # Run a script file
  dynascript run script.dyn

  # Evaluate an inline expression
  dynascript run -e "print(1 + 2)"

  # Run with strict variable resolution at parse time
  dynascript run --strict-variables script.dyn`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST instead of running it")
	runCmd.Flags().BoolVar(&typeCheckFlag, "strict-variables", false, "reject unresolved identifiers at parse time")
	runCmd.Flags().IntVar(&maxOps, "max-operations", 0, "abort after this many evaluation steps (0 = unlimited)")
	runCmd.Flags().IntVar(&maxCallDepth, "max-call-depth", 512, "maximum call/recursion depth")
}

func runScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	eng := engine.New(
		engine.WithStrictVariables(typeCheckFlag),
		engine.WithMaxOperations(maxOps),
		engine.WithMaxCallDepth(maxCallDepth),
	)
	eng.SetPrinter(stdoutPrinter{})

	prog, err := eng.Compile(input)
	if err != nil {
		return reportDiag(err, input, filename)
	}

	if dumpAST {
		fmt.Printf("Program (%d statements, %d functions)\n", len(prog.Statements), len(prog.Functions))
		for _, stmt := range prog.Statements {
			dumpNode(stmt, 1)
		}
		return nil
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[running %s]\n", filename)
	}

	result, err := eng.Run(prog)
	if err != nil {
		return reportDiag(err, input, filename)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[result: %s]\n", result.String())
	}
	return nil
}

// readSource resolves the script source from either -e or a positional
// file argument, matching the teacher's run/lex shared input convention.
func readSource(eval string, args []string) (input, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		src, err := engine.LoadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return src, args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
}

// reportDiag prints err with source context (when it is a *diag.Error)
// and returns a plain error so Cobra's own "Error: ..." line stays terse.
func reportDiag(err error, source, filename string) error {
	if de, ok := err.(*diag.Error); ok {
		fmt.Fprintln(os.Stderr, de.WithSource(source, filename).Format(false))
		return fmt.Errorf("failed")
	}
	fmt.Fprintln(os.Stderr, err)
	return fmt.Errorf("failed")
}

type stdoutPrinter struct{}

func (stdoutPrinter) Print(s string) { fmt.Print(s) }
func (stdoutPrinter) Debug(s string) { fmt.Fprintln(os.Stderr, s) }
