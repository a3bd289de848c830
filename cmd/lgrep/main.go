// Command lgrep is the thin cobra entrypoint over internal/cli: flag
// parsing and pretty-printing only, with all the actual indexing/query
// logic living in the internal packages.
package main

import "github.com/dennisonbertram/lgrep/internal/cli"

func main() {
	cli.Execute()
}
