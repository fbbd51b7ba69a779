// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"kanso/internal/dump"
	"kanso/internal/errors"
	"kanso/internal/parser"
	"kanso/internal/ssa"
	"kanso/internal/types"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: kanso <file.ka> [-dump]")
		os.Exit(1)
	}

	path := os.Args[1]
	dumpCode := len(os.Args) > 2 && os.Args[2] == "-dump"

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read file: %s", err)
		os.Exit(1)
	}

	fn, err := parse(types.NewContext(), string(source), dumpCode)
	if err != nil {
		reportParseError(path, string(source), err)
		os.Exit(1)
	}

	if dumpCode {
		if err := dump.Dump(os.Stdout, fn); err != nil {
			color.Red("dump failed: %s", err)
			os.Exit(1)
		}
	}

	color.Green("✅ Successfully parsed %s", path)
}

// parse runs the lexer→parser→SSA pipeline over source. dumpCode is
// accepted here (matching the §6 surface) but does not itself affect
// parsing; callers decide whether to call dump.Dump on the result.
func parse(ctx *types.Context, source string, dumpCode bool) (*ssa.Function, error) {
	_ = dumpCode
	return parser.Parse(ctx, strings.NewReader(source))
}

// reportParseError prints a single colorized diagnostic: a
// errors.CompilerError gets the full caret-style Reporter rendering, any
// other error (an internal invariant violation) is printed plainly.
func reportParseError(path, source string, err error) {
	if ce, ok := err.(errors.CompilerError); ok {
		reporter := errors.NewReporter(path, source)
		fmt.Print(reporter.Format(ce))
		return
	}
	color.Red("❌ %s", err)
}
