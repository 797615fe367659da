//go:build !windows

package update

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExecSpawnerRunsDetached(t *testing.T) {
	dir := t.TempDir()
	s := &ExecSpawner{
		Executable: "/bin/sh",
		Args:       []string{"-c", "pwd > spawned.txt"},
		Dir:        dir,
	}
	if err := s.Spawn(context.Background()); err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	out := filepath.Join(dir, "spawned.txt")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if data, err := os.ReadFile(out); err == nil && len(data) > 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("detached child never ran in the requested directory")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestExecSpawnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &ExecSpawner{Executable: "/bin/sh", Args: []string{"-c", "true"}}
	if err := s.Spawn(ctx); err == nil {
		t.Fatal("Spawn() should refuse a cancelled context")
	}
}

func TestNewExecSpawner(t *testing.T) {
	s, err := NewExecSpawner("/tmp")
	if err != nil {
		t.Fatalf("NewExecSpawner() error: %v", err)
	}
	if s.Executable == "" || s.Dir != "/tmp" || len(s.Args) != len(WorkerArgs) {
		t.Fatalf("unexpected spawner: %+v", s)
	}
}
