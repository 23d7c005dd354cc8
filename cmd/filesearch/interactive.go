package main

import (
	"os"

	"golang.org/x/term"
)

// isInteractiveEnvironment reports whether logs end up on a terminal a person
// is watching.
func isInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
