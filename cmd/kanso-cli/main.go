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
		fmt.Println("Usage: kanso-cli <file.ka> [-dump]")
		os.Exit(1)
	}

	path := os.Args[1]
	dumpCode := len(os.Args) > 2 && os.Args[2] == "-dump"

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
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

	color.Green("✅ Successfully processed %s", path)
}

func parse(ctx *types.Context, source string, dumpCode bool) (*ssa.Function, error) {
	_ = dumpCode
	return parser.Parse(ctx, strings.NewReader(source))
}

// reportParseError prints a CompilerError as the Reporter's caret
// diagnostic (a header line followed by the source excerpt); any other
// error is printed as one red line.
func reportParseError(path, source string, err error) {
	if ce, ok := err.(errors.CompilerError); ok {
		reporter := errors.NewReporter(path, source)
		fmt.Print(reporter.Format(ce))
		return
	}
	color.Red("❌ %s", err)
}
