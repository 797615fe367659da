// Package prompt holds the interactive terminal prompts: the install scope
// picker and the yes/no confirmation used before overwriting or removing
// files. Both are small bubbletea programs rendered inline.
package prompt

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"hydra/internal/install"
	"hydra/internal/manifest"
)

// Prompter runs prompts against a terminal.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// run executes model inline and returns the final model.
func (p *Prompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("run prompt: %w", err)
	}
	return final, nil
}

// PickScope asks where to install. ok is false when the user cancelled.
func (p *Prompter) PickScope(ctx context.Context) (manifest.Scope, bool, error) {
	final, err := p.run(ctx, NewScopeModel(DefaultScopeOptions()))
	if err != nil {
		return "", false, err
	}
	scope, ok := final.(*ScopeModel).Chosen()
	return scope, ok, nil
}

// Confirm implements install.Confirmer.
func (p *Prompter) Confirm(ctx context.Context, c install.Confirmation) (bool, error) {
	final, err := p.run(ctx, NewConfirmModel(c))
	if err != nil {
		return false, err
	}
	answer, _ := final.(*ConfirmModel).Answer()
	return answer, nil
}
