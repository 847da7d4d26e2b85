package ui

import (
	"fmt"
	"strings"
)

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorHeader = 250 // light gray
	colorMuted  = 245 // medium gray
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderHeader returns s styled as a table header.
func RenderHeader(s string) string { return paint(colorHeader, strings.ToUpper(s)) }

// Null is how absent values print in tables.
func Null() string { return RenderMuted("-") }

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
