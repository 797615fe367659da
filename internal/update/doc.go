// Package update keeps a cached answer to "is a newer Hydra published?".
//
// The session-start hook runs a Trigger, which reads the cache and returns
// at once when the last check is under an hour old. Otherwise it spawns a
// detached Worker process and returns without waiting. The Worker asks a
// Source (the npm registry or GitHub releases) for the latest version,
// compares it with the installed VERSION marker and writes the result to
// the cache atomically. Failures are written to the cache too, so readers
// such as the status line never see a network error directly.
//
// Example usage:
//
//	w := &update.Worker{
//	    CachePath: cachePath,
//	    Markers:   []string{projectMarker, globalMarker},
//	    Source:    update.NewRegistryChecker(update.DefaultPackage),
//	}
//	cache, err := w.Run(ctx)
package update
