package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether cue output on stdout should be colorized.
// NO_COLOR wins over everything else, CLICOLOR_FORCE=1 turns color on even
// when output is piped (useful when cueline watch feeds a pager), CLICOLOR=0
// turns it off, and otherwise a TTY check decides.
func ShouldUseColor() bool {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return false
	case envFlag("CLICOLOR_FORCE") == "1":
		return true
	case envFlag("CLICOLOR") == "0":
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func envFlag(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}
