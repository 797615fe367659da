package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSpawner struct {
	calls int
	err   error
	onRun func()
}

func (f *fakeSpawner) Spawn(context.Context) error {
	f.calls++
	if f.onRun != nil {
		f.onRun()
	}
	return f.err
}

type fakeSource struct {
	version string
	err     error
}

func (f fakeSource) Latest(context.Context) (string, error) {
	return f.version, f.err
}

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.ModTime()
}

func TestTriggerFreshCacheSkips(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "cache", "update-check.json")
	if err := WriteCache(path, Cache{Installed: "1.0.0", Latest: "1.0.0", CheckedAt: now.Add(-30 * time.Minute).UnixMilli()}); err != nil {
		t.Fatal(err)
	}
	before := modTime(t, path)

	spawner := &fakeSpawner{}
	trigger := &Trigger{CachePath: path, Clock: fixedClock(now), Spawner: spawner}

	spawned, err := trigger.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if spawned || spawner.calls != 0 {
		t.Fatalf("fresh cache should not spawn (spawned=%v calls=%d)", spawned, spawner.calls)
	}
	if !modTime(t, path).Equal(before) {
		t.Fatal("fresh cache should not be rewritten")
	}
}

func TestTriggerStaleCacheSpawnsWorker(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	path := filepath.Join(dir, "cache", "update-check.json")
	if err := WriteCache(path, Cache{Installed: "1.0.0", Latest: "1.0.0", CheckedAt: now.Add(-61 * time.Minute).UnixMilli()}); err != nil {
		t.Fatal(err)
	}
	marker := filepath.Join(dir, "VERSION")
	if err := os.WriteFile(marker, []byte("1.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	worker := &Worker{
		CachePath: path,
		Markers:   []string{marker},
		Source:    fakeSource{version: "1.1.0"},
		Clock:     fixedClock(now),
	}
	spawner := &fakeSpawner{onRun: func() {
		if _, err := worker.Run(context.Background()); err != nil {
			t.Errorf("worker Run() error: %v", err)
		}
	}}
	trigger := &Trigger{CachePath: path, Clock: fixedClock(now), Spawner: spawner}

	spawned, err := trigger.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !spawned || spawner.calls != 1 {
		t.Fatalf("stale cache should spawn once (spawned=%v calls=%d)", spawned, spawner.calls)
	}

	got, err := ReadCache(path)
	if err != nil {
		t.Fatalf("ReadCache() error: %v", err)
	}
	if got.CheckedAt != now.UnixMilli() {
		t.Fatalf("CheckedAt = %d, want %d", got.CheckedAt, now.UnixMilli())
	}
	if got.Latest != "1.1.0" || !got.UpdateAvailable {
		t.Fatalf("unexpected cache after worker: %+v", got)
	}
}

func TestTriggerMissingOrCorruptCacheSpawns(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.json"), corrupt} {
		spawner := &fakeSpawner{}
		trigger := &Trigger{CachePath: path, Spawner: spawner}
		spawned, err := trigger.Run(context.Background())
		if err != nil {
			t.Fatalf("Run(%s) error: %v", path, err)
		}
		if !spawned || spawner.calls != 1 {
			t.Fatalf("Run(%s) should spawn (spawned=%v calls=%d)", path, spawned, spawner.calls)
		}
	}
}

func TestTriggerSpawnError(t *testing.T) {
	boom := errors.New("fork failed")
	trigger := &Trigger{
		CachePath: filepath.Join(t.TempDir(), "none.json"),
		Spawner:   &fakeSpawner{err: boom},
	}
	spawned, err := trigger.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if spawned {
		t.Fatal("spawned should be false when Spawn fails")
	}
}
