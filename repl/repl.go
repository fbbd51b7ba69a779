// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"kanso/internal/dump"
	"kanso/internal/errors"
	"kanso/internal/parser"
	"kanso/internal/types"
)

const PROMPT = ">> "

// Start reads one program fragment per line from in, parses and builds its
// SSA graph with a fresh types.Context each time, and prints its dump or
// its error.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		ctx := types.NewContext()

		fn, err := parser.Parse(ctx, strings.NewReader(line))
		if err != nil {
			reportError(out, line, err)
			continue
		}

		if err := dump.Dump(out, fn); err != nil {
			fmt.Fprintf(out, "dump error: %s\n", err)
		}
	}
}

func reportError(out io.Writer, line string, err error) {
	if ce, ok := err.(errors.CompilerError); ok {
		reporter := errors.NewReporter("<repl>", line)
		fmt.Fprint(out, reporter.Format(ce))
		return
	}
	fmt.Fprintf(out, "error: %s\n", err)
}
