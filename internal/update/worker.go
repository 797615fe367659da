package update

import (
	"context"
	"fmt"
	"time"

	"hydra/internal/debug"
	"hydra/internal/probe"
)

// Worker performs one update check and records the outcome in the cache.
type Worker struct {
	CachePath string
	// Markers are VERSION files in lookup order; the first readable,
	// non-empty one is the installed version.
	Markers []string
	Source  Source
	Clock   Clock
	Timeout time.Duration
}

// Run fetches the latest version and writes the cache. Lookup failures are
// recorded in the cache rather than returned; the returned error only
// reports a failure to write the cache itself.
func (w *Worker) Run(ctx context.Context) (Cache, error) {
	clock := w.Clock
	if clock == nil {
		clock = SystemClock
	}
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cache, err := w.check(ctx, timeout)
	if err != nil {
		debug.Logf("update: check failed: %v", err)
		cache = failedCache(clock.Now(), err)
	} else {
		cache.CheckedAt = clock.Now().UnixMilli()
		debug.Logf("update: installed=%s latest=%s available=%t", cache.Installed, cache.Latest, cache.UpdateAvailable)
	}

	if err := WriteCache(w.CachePath, cache); err != nil {
		return cache, fmt.Errorf("write update cache: %w", err)
	}
	return cache, nil
}

func (w *Worker) check(ctx context.Context, timeout time.Duration) (c Cache, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update check panicked: %v", r)
		}
	}()

	if w.Source == nil {
		return Cache{}, fmt.Errorf("no update source configured")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	latest, err := w.Source.Latest(ctx)
	if err != nil {
		return Cache{}, err
	}

	installed := w.installedVersion()
	return Cache{
		Installed:       installed,
		Latest:          latest,
		UpdateAvailable: installed != UnknownVersion && !SameVersion(installed, latest),
	}, nil
}

func (w *Worker) installedVersion() string {
	for _, marker := range w.Markers {
		if v, ok := probe.ReadTrimmed(marker); ok && v != "" {
			return v
		}
	}
	return UnknownVersion
}
