// Package ui provides styled terminal output helpers for the CLI.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// colorEnabled reports whether the terminal supports color output.
func colorEnabled() bool {
	return termenv.ColorProfile() != termenv.Ascii
}

// RenderAccent styles s as an informational highlight.
func RenderAccent(s string) string {
	if !colorEnabled() {
		return s
	}
	return accentStyle.Render(s)
}

// RenderPass styles s as a success marker.
func RenderPass(s string) string {
	if !colorEnabled() {
		return s
	}
	return passStyle.Render(s)
}

// RenderWarn styles s as a warning marker.
func RenderWarn(s string) string {
	if !colorEnabled() {
		return s
	}
	return warnStyle.Render(s)
}

// RenderFail styles s as a failure marker.
func RenderFail(s string) string {
	if !colorEnabled() {
		return s
	}
	return failStyle.Render(s)
}
