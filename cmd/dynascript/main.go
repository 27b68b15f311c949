// Command dynascript is the CLI front end for the engine: run/lex/parse
// subcommands built on pkg/engine, internal/lexer, and internal/parser.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/dynascript/cmd/dynascript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
