package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	primaryColor   = lipgloss.Color("#50FA7B")
	secondaryColor = lipgloss.Color("#8BE9FD")
	dimColor       = lipgloss.Color("#6272A4")
	textColor      = lipgloss.Color("#F8F8F2")
	warnColor      = lipgloss.Color("#F1FA8C")
	errorColor     = lipgloss.Color("#FF5555")
)

var (
	logoTopStyle    = lipgloss.NewStyle().Foreground(secondaryColor)
	logoBottomStyle = lipgloss.NewStyle().Foreground(primaryColor)
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(textColor)
	headingStyle    = lipgloss.NewStyle().Bold(true)
	accentStyle     = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	successStyle    = lipgloss.NewStyle().Foreground(primaryColor)
	dimStyle        = lipgloss.NewStyle().Foreground(dimColor)
	warnStyle       = lipgloss.NewStyle().Foreground(warnColor)
	errorStyle      = lipgloss.NewStyle().Foreground(errorColor)
	doneStyle       = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
)

// padRight pads s with spaces to width terminal cells, ignoring escape codes.
func padRight(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
