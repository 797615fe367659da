package update

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"hydra/internal/debug"
)

// WorkerArgs are the arguments that run the update worker.
var WorkerArgs = []string{"hook", "check-update", "--worker"}

// ExecSpawner re-executes a binary as a detached update worker. The child
// gets its own session, no stdio, and is released immediately so it
// survives the parent.
type ExecSpawner struct {
	Executable string
	Args       []string
	// Dir is the child's working directory; the worker looks for the
	// project VERSION marker relative to it.
	Dir string
}

// NewExecSpawner returns a spawner for the running binary.
func NewExecSpawner(dir string) (*ExecSpawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return &ExecSpawner{Executable: exe, Args: WorkerArgs, Dir: dir}, nil
}

// Spawn starts the worker and returns without waiting for it.
func (s *ExecSpawner) Spawn(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	//nolint:gosec // G204: executable is this binary, resolved by os.Executable
	cmd := exec.Command(s.Executable, s.Args...)
	cmd.Dir = s.Dir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start update worker: %w", err)
	}
	debug.Logf("update: worker started pid=%d", cmd.Process.Pid)
	return cmd.Process.Release()
}
