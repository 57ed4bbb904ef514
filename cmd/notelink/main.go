// notelink finds note titles in text and links them.
// Single binary: one-shot commands, or a daemon that keeps the title
// automaton warm and follows the notes directory.
package main

import (
	"fmt"
	"os"

	"github.com/corey/notelink/cmd/notelink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
