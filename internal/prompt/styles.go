package prompt

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#50FA7B")
	dimColor    = lipgloss.Color("#6272A4")

	questionStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accentColor)
	hintStyle     = lipgloss.NewStyle().Foreground(dimColor)
	detailStyle   = lipgloss.NewStyle().Foreground(dimColor).PaddingLeft(4)
)
