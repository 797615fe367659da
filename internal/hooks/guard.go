package hooks

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// GuardDirName is the directory under the system temp dir that holds one
// tracking file per session.
const GuardDirName = "hydra-guard"

// DefaultGuardDir returns <tmp>/hydra-guard.
func DefaultGuardDir() string {
	return filepath.Join(os.TempDir(), GuardDirName)
}

// TrackingFile returns the tracking file for a session inside dir. Session
// ids are reduced to a safe file name; an empty id maps to "unknown".
func TrackingFile(dir, sessionID string) string {
	return filepath.Join(dir, sanitizeSession(sessionID)+".txt")
}

// Track records the file touched by a Write or Edit so the guard agent can
// scan it later. Paths already tracked for the session are not repeated.
// It reports whether a line was appended; input without a path is a no-op.
func Track(in Input, dir string) (bool, error) {
	path := in.ToolInput.ChangedPath()
	if path == "" || strings.ContainsAny(path, "\r\n") {
		return false, nil
	}

	//nolint:gosec // G301: tracking files are shared with the host's tools
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create guard dir: %w", err)
	}
	file := TrackingFile(dir, in.SessionID)

	tracked, err := TrackedFiles(file)
	if err != nil {
		return false, err
	}
	for _, p := range tracked {
		if p == path {
			return false, nil
		}
	}

	//nolint:gosec // G302,G304: path is built from the guard dir and a sanitised session id
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("open tracking file: %w", err)
	}
	if _, err := f.WriteString(path + "\n"); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("append tracking file: %w", err)
	}
	return true, f.Close()
}

// TrackedFiles lists the paths in a tracking file in the order they were
// recorded. A missing file yields no paths.
func TrackedFiles(file string) ([]string, error) {
	f, err := os.Open(file) //nolint:gosec // G304: tracking file under the guard dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open tracking file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var paths []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxInput)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			paths = append(paths, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tracking file: %w", err)
	}
	return paths, nil
}

func sanitizeSession(id string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(id))
	if strings.Trim(clean, "_") == "" {
		return "unknown"
	}
	return clean
}
