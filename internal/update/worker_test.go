package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMarker(t *testing.T, path, version string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(version), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWorkerPrefersProjectMarker(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project", "VERSION")
	global := filepath.Join(dir, "global", "VERSION")
	writeMarker(t, project, "1.2.0\n")
	writeMarker(t, global, "1.0.0\n")

	w := &Worker{
		CachePath: filepath.Join(dir, "cache.json"),
		Markers:   []string{project, global},
		Source:    fakeSource{version: "1.2.0"},
	}
	got, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got.Installed != "1.2.0" {
		t.Fatalf("Installed = %q, want project marker 1.2.0", got.Installed)
	}
	if got.UpdateAvailable {
		t.Fatal("UpdateAvailable should be false when installed == latest")
	}
}

func TestWorkerFallsBackToGlobalMarker(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global", "VERSION")
	writeMarker(t, global, "1.0.0")

	w := &Worker{
		CachePath: filepath.Join(dir, "cache.json"),
		Markers:   []string{filepath.Join(dir, "project", "VERSION"), global},
		Source:    fakeSource{version: "v1.1.0"},
	}
	got, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got.Installed != "1.0.0" || !got.UpdateAvailable {
		t.Fatalf("unexpected cache: %+v", got)
	}
}

func TestWorkerUnknownInstalledNeverOffersUpdate(t *testing.T) {
	dir := t.TempDir()
	w := &Worker{
		CachePath: filepath.Join(dir, "cache.json"),
		Markers:   []string{filepath.Join(dir, "VERSION")},
		Source:    fakeSource{version: "9.9.9"},
	}
	got, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got.Installed != UnknownVersion || got.UpdateAvailable {
		t.Fatalf("unexpected cache: %+v", got)
	}
	if got.Error != "" {
		t.Fatalf("missing marker is not an error, got %q", got.Error)
	}
}

func TestWorkerNetworkFailureWritesParsableCache(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	dir := t.TempDir()
	marker := filepath.Join(dir, "VERSION")
	writeMarker(t, marker, "1.0.0")
	path := filepath.Join(dir, "cache", "update-check.json")

	w := &Worker{
		CachePath: path,
		Markers:   []string{marker},
		Source:    NewRegistryChecker("pkg", WithEndpoint(endpoint)),
		Clock:     fixedClock(now),
		Timeout:   2 * time.Second,
	}
	if _, err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	var got Cache
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("cache not parsable: %v\n%s", err, data)
	}
	if got.UpdateAvailable {
		t.Fatal("UpdateAvailable must be false on failure")
	}
	if got.Error == "" {
		t.Fatal("Error must be set on failure")
	}
	if got.Installed != UnknownVersion || got.Latest != UnknownVersion {
		t.Fatalf("versions should be unknown on failure: %+v", got)
	}
	if got.CheckedAt != now.UnixMilli() {
		t.Fatalf("CheckedAt = %d, want %d", got.CheckedAt, now.UnixMilli())
	}
}

type blockingSource struct{}

func (blockingSource) Latest(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", fmt.Errorf("%w: %v", ErrNetworkFailure, ctx.Err())
}

func TestWorkerTimeoutBoundsSource(t *testing.T) {
	dir := t.TempDir()
	w := &Worker{
		CachePath: filepath.Join(dir, "cache.json"),
		Source:    blockingSource{},
		Timeout:   20 * time.Millisecond,
	}

	start := time.Now()
	got, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("worker did not honour its timeout")
	}
	if got.Error == "" {
		t.Fatal("timeout should be recorded in the cache")
	}
}

type panickingSource struct{}

func (panickingSource) Latest(context.Context) (string, error) { panic("boom") }

func TestWorkerRecoversSourcePanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	w := &Worker{CachePath: path, Source: panickingSource{}}
	got, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got.Error == "" {
		t.Fatal("panic should be recorded in the cache")
	}
}

func TestWorkerCacheWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := &Worker{
		CachePath: filepath.Join(blocker, "cache.json"),
		Source:    fakeSource{err: errors.New("offline")},
	}
	if _, err := w.Run(context.Background()); err == nil {
		t.Fatal("Run() should report a cache write failure")
	}
}
