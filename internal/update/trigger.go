package update

import (
	"context"
	"time"

	"hydra/internal/debug"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Spawner launches the update worker without waiting for it.
type Spawner interface {
	Spawn(ctx context.Context) error
}

// Trigger runs on session start. It decides from the cache alone whether a
// new check is due and hands the network call to a detached worker.
//
// Two triggers started together can both see a stale cache and both spawn.
// The workers then race on the cache file and the last rename wins, which
// leaves a valid record either way.
type Trigger struct {
	CachePath string
	Clock     Clock
	Spawner   Spawner
}

// Run spawns the worker when the cache is missing, unreadable or older
// than CacheTTL. It reports whether a worker was launched.
func (t *Trigger) Run(ctx context.Context) (bool, error) {
	clock := t.Clock
	if clock == nil {
		clock = SystemClock
	}

	cache, err := ReadCache(t.CachePath)
	if err == nil && cache.Fresh(clock.Now()) {
		debug.Logf("update: cache checked %s, skipping", cache.CheckedTime().Format(time.RFC3339))
		return false, nil
	}
	if err != nil {
		debug.Logf("update: cache unavailable (%v), spawning worker", err)
	} else {
		debug.Logf("update: cache stale since %s, spawning worker", cache.CheckedTime().Format(time.RFC3339))
	}

	if err := t.Spawner.Spawn(ctx); err != nil {
		return false, err
	}
	return true, nil
}
