package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hydra/internal/install"
	"hydra/internal/manifest"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, msgs ...tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func TestScopeModelDefaultsToGlobal(t *testing.T) {
	m := NewScopeModel(DefaultScopeOptions())
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should quit the program")
	}
	scope, ok := m.Chosen()
	if !ok || scope != manifest.ScopeGlobal {
		t.Fatalf("Chosen() = %q, %v; want global", scope, ok)
	}
}

func TestScopeModelNavigation(t *testing.T) {
	m := NewScopeModel(DefaultScopeOptions())
	press(m, tea.KeyMsg{Type: tea.KeyDown}, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if scope, _ := m.Chosen(); scope != manifest.ScopeBoth {
		t.Fatalf("Chosen() = %q, want both", scope)
	}

	m = NewScopeModel(DefaultScopeOptions())
	press(m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	if scope, _ := m.Chosen(); scope != manifest.ScopeBoth {
		t.Fatalf("up from the top should wrap to both, got %q", scope)
	}
}

func TestScopeModelCancel(t *testing.T) {
	m := NewScopeModel(DefaultScopeOptions())
	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit the program")
	}
	if _, ok := m.Chosen(); ok {
		t.Fatal("cancel should leave no choice")
	}

	// Keys after the prompt finished are ignored.
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.Chosen(); ok {
		t.Fatal("finished prompt should not accept input")
	}
}

func TestScopeModelView(t *testing.T) {
	m := NewScopeModel(DefaultScopeOptions())
	view := m.View()
	for _, want := range []string{"Where would you like to install?", "Global", "Local", "Both", "❯"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	press(m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if view := m.View(); !strings.Contains(view, "Local") || strings.Contains(view, "Both") {
		t.Fatalf("final view should only echo the choice:\n%s", view)
	}
}

func TestConfirmModelAnswers(t *testing.T) {
	tests := []struct {
		name string
		def  bool
		msg  tea.KeyMsg
		want bool
	}{
		{name: "yes", msg: runes("y"), want: true},
		{name: "no", def: true, msg: runes("n"), want: false},
		{name: "enter takes default yes", def: true, msg: tea.KeyMsg{Type: tea.KeyEnter}, want: true},
		{name: "enter takes default no", msg: tea.KeyMsg{Type: tea.KeyEnter}, want: false},
		{name: "esc declines", def: true, msg: tea.KeyMsg{Type: tea.KeyEsc}, want: false},
		{name: "ctrl+c declines", def: true, msg: tea.KeyMsg{Type: tea.KeyCtrlC}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConfirmModel(install.Confirmation{Question: "Proceed?", Default: tt.def})
			_, cmd := press(m, tt.msg)
			if cmd == nil {
				t.Fatal("answer should quit the program")
			}
			answer, done := m.Answer()
			if !done || answer != tt.want {
				t.Fatalf("Answer() = %v, %v; want %v, true", answer, done, tt.want)
			}
		})
	}
}

func TestConfirmModelIgnoresOtherKeys(t *testing.T) {
	m := NewConfirmModel(install.Confirmation{Question: "Proceed?"})
	if _, cmd := press(m, runes("x")); cmd != nil {
		t.Fatal("unrelated key should not quit")
	}
	if _, done := m.Answer(); done {
		t.Fatal("unrelated key should not answer")
	}
}

func TestConfirmModelView(t *testing.T) {
	m := NewConfirmModel(install.Confirmation{
		Question: "Remove 2 Hydra file(s)?",
		Details:  []string{"[global] agents/hydra-scout.md", "[local] skills/hydra/SKILL.md"},
	})
	view := m.View()
	for _, want := range []string{"hydra-scout.md", "SKILL.md", "Remove 2 Hydra file(s)?", "(y/N)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPrompterRunsInline(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{In: strings.NewReader("j\r"), Out: &out}
	scope, ok, err := p.PickScope(context.Background())
	if err != nil {
		t.Fatalf("PickScope() error: %v", err)
	}
	if !ok || scope != manifest.ScopeLocal {
		t.Fatalf("PickScope() = %q, %v; want local", scope, ok)
	}

	p = &Prompter{In: strings.NewReader("y"), Out: &out}
	answer, err := p.Confirm(context.Background(), install.Confirmation{Question: "Overwrite?"})
	if err != nil {
		t.Fatalf("Confirm() error: %v", err)
	}
	if !answer {
		t.Fatal("Confirm() should return true for y")
	}
}
