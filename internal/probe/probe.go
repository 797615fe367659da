// Package probe answers read-only questions about the filesystem. Every
// error is folded into "not present"; callers use the answers for
// confirmation prompts and status display, never to gate writes.
package probe

import (
	"os"
	"strings"
)

// Exists reports whether path can be stat'ed.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExistsAny reports whether at least one path exists.
func ExistsAny(paths []string) bool {
	for _, p := range paths {
		if Exists(p) {
			return true
		}
	}
	return false
}

// Existing returns the subset of paths that exist, preserving order.
func Existing(paths []string) []string {
	var out []string
	for _, p := range paths {
		if Exists(p) {
			out = append(out, p)
		}
	}
	return out
}

// ReadTrimmed returns the whitespace-trimmed content of a small text file.
// ok is false when the file cannot be read or is blank.
func ReadTrimmed(path string) (string, bool) {
	//nolint:gosec // G304: callers pass paths built from known install roots
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	s := strings.TrimSpace(string(data))
	return s, s != ""
}
