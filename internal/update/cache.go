package update

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hydra/internal/fsutil"
)

// CacheTTL is how long a check result stays fresh.
const CacheTTL = time.Hour

// UnknownVersion stands in for a version that could not be determined.
const UnknownVersion = "unknown"

// Cache is the update-check record shared between the worker and its readers.
type Cache struct {
	Installed       string `json:"installed"`
	Latest          string `json:"latest"`
	UpdateAvailable bool   `json:"update_available"`
	CheckedAt       int64  `json:"checked_at"`
	Error           string `json:"error,omitempty"`
}

// CheckedTime returns CheckedAt as a time.
func (c Cache) CheckedTime() time.Time {
	return time.UnixMilli(c.CheckedAt)
}

// Fresh reports whether the record is younger than CacheTTL at now. A
// record stamped in the future counts as fresh.
func (c Cache) Fresh(now time.Time) bool {
	if c.CheckedAt <= 0 {
		return false
	}
	return now.Sub(c.CheckedTime()) < CacheTTL
}

// ReadCache loads the cache at path. A missing file returns an error
// matching os.ErrNotExist.
func ReadCache(path string) (Cache, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: cache path is derived from the global root
	if err != nil {
		return Cache{}, err
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return Cache{}, fmt.Errorf("parse update cache: %w", err)
	}
	return c, nil
}

// WriteCache writes c to path atomically, creating the cache directory.
func WriteCache(path string, c Cache) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode update cache: %w", err)
	}
	return fsutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

func failedCache(now time.Time, err error) Cache {
	return Cache{
		Installed: UnknownVersion,
		Latest:    UnknownVersion,
		CheckedAt: now.UnixMilli(),
		Error:     err.Error(),
	}
}
