package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"hydra/internal/install"
)

// ConfirmModel is a yes/no question. Enter takes the default answer;
// cancelling counts as no.
type ConfirmModel struct {
	c      install.Confirmation
	answer bool
	done   bool
	keys   KeyMap
}

// NewConfirmModel creates a confirm prompt.
func NewConfirmModel(c install.Confirmation) *ConfirmModel {
	return &ConfirmModel{c: c, keys: DefaultKeyMap()}
}

// Init implements tea.Model.
func (m *ConfirmModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.answer = true
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Quit):
		m.answer = false
	case key.Matches(keyMsg, m.keys.Select):
		m.answer = m.c.Default
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m *ConfirmModel) View() string {
	var b strings.Builder
	for _, d := range m.c.Details {
		b.WriteString(detailStyle.Render(d))
		b.WriteString("\n")
	}
	if len(m.c.Details) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(questionStyle.Render("? " + m.c.Question))
	if m.done {
		answer := "No"
		if m.answer {
			answer = "Yes"
		}
		b.WriteString(" " + selectedStyle.Render(answer) + "\n")
		return b.String()
	}
	hint := " (y/N)"
	if m.c.Default {
		hint = " (Y/n)"
	}
	b.WriteString(hintStyle.Render(hint))
	b.WriteString("\n")
	return b.String()
}

// Answer reports the user's answer and whether one was given.
func (m *ConfirmModel) Answer() (bool, bool) {
	return m.answer, m.done
}
