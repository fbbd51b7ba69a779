// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"kanso/repl"
)

func main() {
	fmt.Println("kanso REPL — one program fragment per line, Ctrl-D to exit")
	repl.Start(os.Stdin, os.Stdout)
}
