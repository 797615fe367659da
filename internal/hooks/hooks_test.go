package hooks

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"hydra/internal/update"
)

const sessionDoc = `{
  "session_id": "abc-123",
  "cwd": "/work/fallback",
  "model": {"display_name": "Opus"},
  "context_window": {"used_percentage": 37.4},
  "cost": {"total_cost_usd": 0.419},
  "workspace": {"current_dir": "/work/my-project"}
}`

func TestParseInputRejectsNonObjects(t *testing.T) {
	for _, data := range []string{"", "  ", "null", "[]", "42", `{"model":`} {
		if _, err := ParseInput([]byte(data)); err == nil {
			t.Errorf("ParseInput(%q) should fail", data)
		}
	}
}

func TestReadInput(t *testing.T) {
	in, err := ReadInput(strings.NewReader(sessionDoc))
	if err != nil {
		t.Fatalf("ReadInput() error: %v", err)
	}
	if in.SessionID != "abc-123" || in.Model.DisplayName != "Opus" || in.Workspace.CurrentDir != "/work/my-project" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestStatusLine(t *testing.T) {
	got := ansi.Strip(StatusLine([]byte(sessionDoc), ""))
	want := "🐉 │ Opus │ Ctx: 37% ████░░░░░░ │ $0.42 │ my-project"
	if got != want {
		t.Fatalf("StatusLine() = %q, want %q", got, want)
	}
}

func TestStatusLineFallback(t *testing.T) {
	for _, data := range []string{"", "not json", "[1,2]", `{"cost":{"total_cost_usd":"free"}}`} {
		if got := StatusLine([]byte(data), ""); got != FallbackStatusLine {
			t.Errorf("StatusLine(%q) = %q, want fallback", data, got)
		}
	}
}

func TestStatusLineDefaults(t *testing.T) {
	got := ansi.Strip(StatusLine([]byte(`{"cwd":"/srv/app"}`), ""))
	want := "🐉 │ Unknown │ Ctx: 0% ░░░░░░░░░░ │ $0.00 │ app"
	if got != want {
		t.Fatalf("StatusLine() = %q, want %q", got, want)
	}
}

func TestStatusLineUpdateNotice(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "update-check.json")
	if err := update.WriteCache(cachePath, update.Cache{Installed: "1.0.0", Latest: "1.2.0", UpdateAvailable: true, CheckedAt: 1}); err != nil {
		t.Fatal(err)
	}
	got := ansi.Strip(StatusLine([]byte(sessionDoc), cachePath))
	if !strings.HasSuffix(got, " │ ⚡ v1.2.0 available") {
		t.Fatalf("missing update notice: %q", got)
	}

	if err := update.WriteCache(cachePath, update.Cache{Installed: "1.2.0", Latest: "1.2.0", CheckedAt: 1}); err != nil {
		t.Fatal(err)
	}
	if got := ansi.Strip(StatusLine([]byte(sessionDoc), cachePath)); strings.Contains(got, "⚡") {
		t.Fatalf("unexpected update notice: %q", got)
	}
}

func TestContextColor(t *testing.T) {
	tests := []struct {
		pct  int
		want string
	}{
		{0, colorGreen},
		{49, colorGreen},
		{50, colorYellow},
		{79, colorYellow},
		{80, colorRed},
		{100, colorRed},
	}
	for _, tt := range tests {
		if got := contextColor(tt.pct); got != tt.want {
			t.Errorf("contextColor(%d) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestStatusLineColours(t *testing.T) {
	line := RenderStatusLine(Input{ContextWindow: ContextWindow{UsedPercentage: 92}}, nil)
	if !strings.Contains(line, "\x1b[31mCtx: 92%") {
		t.Fatalf("high usage should be red: %q", line)
	}
	if !strings.Contains(line, "█████████░") {
		t.Fatalf("bar should be nine tenths full: %q", ansi.Strip(line))
	}
}

func TestTrackDeduplicates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), GuardDirName)
	in := Input{SessionID: "s1", ToolInput: ToolInput{FilePath: "/repo/main.go"}}

	for i, want := range []bool{true, false} {
		appended, err := Track(in, dir)
		if err != nil {
			t.Fatalf("Track() #%d error: %v", i, err)
		}
		if appended != want {
			t.Fatalf("Track() #%d appended=%v, want %v", i, appended, want)
		}
	}

	in.ToolInput = ToolInput{Path: "/repo/other.go"}
	if appended, err := Track(in, dir); err != nil || !appended {
		t.Fatalf("Track(path) appended=%v err=%v", appended, err)
	}

	got, err := TrackedFiles(TrackingFile(dir, "s1"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "/repo/main.go,/repo/other.go" {
		t.Fatalf("tracked = %v", got)
	}
}

func TestTrackWithoutPathIsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), GuardDirName)
	appended, err := Track(Input{SessionID: "s1"}, dir)
	if err != nil || appended {
		t.Fatalf("Track() appended=%v err=%v", appended, err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("no-op track should not create the guard dir")
	}
}

func TestTrackingFileSanitisesSession(t *testing.T) {
	dir := "/tmp/hydra-guard"
	tests := map[string]string{
		"abc-123":     "abc-123.txt",
		"":            "unknown.txt",
		"../../etc":   "______etc.txt",
		"a/b\\c":      "a_b_c.txt",
		"   ":         "unknown.txt",
		"..":          "unknown.txt",
		"sess_01.xyz": "sess_01_xyz.txt",
	}
	for id, want := range tests {
		if got := filepath.Base(TrackingFile(dir, id)); got != want {
			t.Errorf("TrackingFile(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestTrackedFilesMissing(t *testing.T) {
	got, err := TrackedFiles(filepath.Join(t.TempDir(), "none.txt"))
	if err != nil || got != nil {
		t.Fatalf("TrackedFiles() = %v, %v", got, err)
	}
}

func TestSafelyRecoversPanics(t *testing.T) {
	err := Safely("boom", func() error { panic("kaboom") })
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("Safely() error = %v", err)
	}

	want := errors.New("plain")
	if err := Safely("plain", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Safely() error = %v, want %v", err, want)
	}
	if err := Safely("ok", func() error { return nil }); err != nil {
		t.Fatalf("Safely() error = %v", err)
	}
}
