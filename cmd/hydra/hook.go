package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"hydra/internal/config"
	"hydra/internal/debug"
	"hydra/internal/hooks"
	"hydra/internal/manifest"
	"hydra/internal/update"
)

// runHook serves the scripts registered in the host settings. The host shows
// hook output only for the status line, so every failure is logged and the
// exit status is always 0.
// maxHookInput bounds how much of the host's session document is read.
const maxHookInput = 1 << 20

func runHook(ctx context.Context, args []string, e env) int {
	if len(args) == 0 {
		return 0
	}
	name, rest := args[0], args[1:]

	// A broken config file leaves the getters at their zero values; the hooks
	// still run.
	cfgErr := config.Initialize(config.WithWorkingDir(e.workDir))
	_ = debug.InitMode(config.GetBool(config.KeyDebug), debug.Append, "hook "+name)
	if cfgErr != nil {
		debug.Logf("hook %s: config: %v", name, cfgErr)
	}
	defer debug.Close()

	_ = hooks.Safely(name, func() error {
		switch name {
		case "check-update":
			return hookCheckUpdate(ctx, rest, e)
		case "statusline":
			return hookStatusLine(e)
		case "auto-guard":
			return hookAutoGuard(e)
		default:
			return fmt.Errorf("unknown hook %q", name)
		}
	})
	return 0
}

func globalRoot() (manifest.BaseRoot, error) {
	path, err := config.GlobalRoot()
	if err != nil {
		return manifest.BaseRoot{}, err
	}
	return manifest.BaseRoot{Scope: manifest.ScopeGlobal, Path: path}, nil
}

func hookCheckUpdate(ctx context.Context, args []string, e env) error {
	var worker bool
	fs := pflag.NewFlagSet("check-update", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&worker, "worker", false, "run the check in this process")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse check-update flags: %w", err)
	}

	global, err := globalRoot()
	if err != nil {
		return err
	}
	cachePath := global.UpdateCachePath()

	if !worker {
		// The host writes the session document to every hook; leaving it
		// unread can fail the host's write once this process exits.
		if e.stdin != nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(e.stdin, maxHookInput))
		}
		spawner, err := update.NewExecSpawner(e.workDir)
		if err != nil {
			return err
		}
		spawned, err := (&update.Trigger{CachePath: cachePath, Spawner: spawner}).Run(ctx)
		debug.Logf("check-update: spawned=%t", spawned)
		return err
	}

	local := manifest.BaseRoot{Scope: manifest.ScopeLocal, Path: config.LocalRoot(e.workDir)}
	timeout := config.GetDuration(config.KeyUpdateTimeout)
	w := &update.Worker{
		CachePath: cachePath,
		Markers:   []string{local.VersionMarkerPath(), global.VersionMarkerPath()},
		Source: update.NewSource(
			config.GetString(config.KeyUpdateSource),
			config.GetString(config.KeyUpdatePackage),
			config.GetString(config.KeyUpdateRepoOwner),
			config.GetString(config.KeyUpdateRepoName),
		),
		Timeout: timeout,
	}
	_, err = w.Run(ctx)
	return err
}

func hookStatusLine(e env) error {
	data, err := io.ReadAll(io.LimitReader(e.stdin, maxHookInput))
	if err != nil {
		_, _ = fmt.Fprintln(e.stdout, hooks.FallbackStatusLine)
		return fmt.Errorf("read status input: %w", err)
	}
	cachePath := ""
	if global, err := globalRoot(); err == nil {
		cachePath = global.UpdateCachePath()
	}
	_, err = fmt.Fprintln(e.stdout, hooks.StatusLine(data, cachePath))
	return err
}

func hookAutoGuard(e env) error {
	in, err := hooks.ReadInput(e.stdin)
	if err != nil {
		return err
	}
	added, err := hooks.Track(in, hooks.DefaultGuardDir())
	if added {
		debug.Logf("auto-guard: tracked %s for session %s", in.ToolInput.ChangedPath(), in.SessionID)
	}
	return err
}
