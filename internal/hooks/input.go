// Package hooks implements the commands the host editor runs on session
// events: the status line renderer, the auto-guard change tracker and the
// fault barrier every hook runs behind. Hooks read one JSON document from
// stdin and must never fail the host, so every entry point degrades to a
// quiet no-op or a fallback line.
package hooks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maxInput bounds how much of stdin a hook reads.
const maxInput = 1 << 20

// Input is the session document the host writes to a hook's stdin. Only the
// fields Hydra reads are declared.
type Input struct {
	SessionID     string        `json:"session_id"`
	CWD           string        `json:"cwd"`
	ToolInput     ToolInput     `json:"tool_input"`
	Model         Model         `json:"model"`
	ContextWindow ContextWindow `json:"context_window"`
	Cost          Cost          `json:"cost"`
	Workspace     Workspace     `json:"workspace"`
}

// ToolInput carries the arguments of the tool call that fired PostToolUse.
type ToolInput struct {
	FilePath string `json:"file_path"`
	Path     string `json:"path"`
}

// ChangedPath returns file_path, falling back to path.
func (t ToolInput) ChangedPath() string {
	if t.FilePath != "" {
		return t.FilePath
	}
	return t.Path
}

type Model struct {
	DisplayName string `json:"display_name"`
}

type ContextWindow struct {
	UsedPercentage float64 `json:"used_percentage"`
}

type Cost struct {
	TotalCostUSD float64 `json:"total_cost_usd"`
}

type Workspace struct {
	CurrentDir string `json:"current_dir"`
}

// ParseInput decodes a hook document. The top level must be an object.
func ParseInput(data []byte) (Input, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Input{}, fmt.Errorf("hook input is not a JSON object")
	}
	var in Input
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return Input{}, fmt.Errorf("decode hook input: %w", err)
	}
	return in, nil
}

// ReadInput reads and decodes a hook document from r.
func ReadInput(r io.Reader) (Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInput))
	if err != nil {
		return Input{}, fmt.Errorf("read hook input: %w", err)
	}
	return ParseInput(data)
}
