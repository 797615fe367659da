package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"hydra/internal/manifest"
)

// ScopeOption is one choice in the scope picker.
type ScopeOption struct {
	Scope manifest.Scope
	Label string
	Hint  string
}

// DefaultScopeOptions lists global, local and both, in that order.
func DefaultScopeOptions() []ScopeOption {
	return []ScopeOption{
		{Scope: manifest.ScopeGlobal, Label: "Global", Hint: "(~/.claude/) available in all projects"},
		{Scope: manifest.ScopeLocal, Label: "Local", Hint: "(./.claude/) this project only"},
		{Scope: manifest.ScopeBoth, Label: "Both", Hint: "install to both locations"},
	}
}

// ScopeModel is a single-choice list. After the program exits, Chosen
// returns the selection or false when the user cancelled.
type ScopeModel struct {
	options []ScopeOption
	cursor  int
	chosen  *ScopeOption
	done    bool
	keys    KeyMap
}

// NewScopeModel creates a picker with the cursor on the first option.
func NewScopeModel(options []ScopeOption) *ScopeModel {
	return &ScopeModel{options: options, keys: DefaultKeyMap()}
}

// Init implements tea.Model.
func (m *ScopeModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *ScopeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	case key.Matches(keyMsg, m.keys.Down):
		m.cursor = (m.cursor + 1) % len(m.options)
	case key.Matches(keyMsg, m.keys.Select):
		if len(m.options) > 0 {
			opt := m.options[m.cursor]
			m.chosen = &opt
		}
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Quit):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *ScopeModel) View() string {
	var b strings.Builder
	b.WriteString(questionStyle.Render("? Where would you like to install?"))
	if m.done {
		if m.chosen != nil {
			b.WriteString(" " + selectedStyle.Render(m.chosen.Label))
		}
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString("\n")
	for i, opt := range m.options {
		label := fmt.Sprintf("%-7s", opt.Label)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ ") + selectedStyle.Render(label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString(" " + hintStyle.Render(opt.Hint) + "\n")
	}
	b.WriteString(hintStyle.Render("  ↑/↓ move • enter select • esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// Chosen returns the selected scope.
func (m *ScopeModel) Chosen() (manifest.Scope, bool) {
	if m.chosen == nil {
		return "", false
	}
	return m.chosen.Scope, true
}
