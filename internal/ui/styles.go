package ui

import (
	"fmt"

	"github.com/alfredjeanlab/cueline/internal/model"
)

// ANSI256 color codes used across the CLI.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
	colorCorrect = 114 // green
	colorWrong   = 203 // red
	colorWarn    = 214 // orange
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderCorrect returns s in green.
func RenderCorrect(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorCorrect, s)
}

// RenderWrong returns s in red.
func RenderWrong(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorWrong, s)
}

// RenderWarn returns s in orange.
func RenderWarn(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorWarn, s)
}

// RenderKind returns the cue kind styled for terminal display. Questions
// and choices get the accent color, cleared slots are muted.
func RenderKind(k model.Kind) string {
	switch k {
	case model.KindQuestion, model.KindChoice:
		return RenderAccent(k.String())
	case model.KindNone:
		return RenderMuted(k.String())
	default:
		return k.String()
	}
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
