// Package install places the bundle under the global and local roots,
// removes it again, and reports what is present.
//
// Writes are never transactional. Every file is attempted, failures are
// recorded per file, and the settings document is saved last.
package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"hydra/internal/bundle"
	"hydra/internal/debug"
	hyerrors "hydra/internal/errors"
	"hydra/internal/manifest"
	"hydra/internal/probe"
	"hydra/internal/settings"
)

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = hyerrors.New(hyerrors.CodeCancelled, "cancelled", nil)

// Kinds for files that live outside the manifest.
const (
	KindHook  manifest.Kind = "hook"
	KindCache manifest.Kind = "cache"
)

// DefaultBinary is written into hook scripts when no binary path is known.
const DefaultBinary = "hydra"

// Confirmation is a yes/no question put to the user.
type Confirmation struct {
	Question string
	// Details are listed above the question.
	Details []string
	// Default is the answer taken on a bare Enter.
	Default bool
}

// Confirmer asks the user to approve a destructive step.
type Confirmer interface {
	Confirm(ctx context.Context, c Confirmation) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, c Confirmation) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, c Confirmation) (bool, error) {
	return f(ctx, c)
}

// Installer acts on the roots derived from GlobalRoot and LocalRoot. A nil
// Confirmer approves every question.
type Installer struct {
	Bundle     *bundle.Bundle
	GlobalRoot string
	LocalRoot  string
	Confirmer  Confirmer
	// BinPath is substituted into hook scripts.
	BinPath string
}

// FileResult is the outcome of writing or removing one file.
type FileResult struct {
	Root   manifest.BaseRoot
	Kind   manifest.Kind
	Key    string
	Rel    string
	Path   string
	Model  string
	Err    error
	Exists bool
}

// OK reports whether the operation on the file succeeded.
func (r FileResult) OK() bool { return r.Err == nil }

// RootResult groups file results for one root.
type RootResult struct {
	Root  manifest.BaseRoot
	Files []FileResult
}

// InstallReport describes a finished install.
type InstallReport struct {
	Scope   manifest.Scope
	Version string
	// Overwrite is set when files from an earlier install were replaced.
	Overwrite bool
	Roots     []RootResult
	Hooks     []FileResult

	SettingsPath string
	SettingsErr  error
	// SettingsBackup is the copy made of an unparsable settings.json before
	// it was replaced, empty when none was needed.
	SettingsBackup string
	// StatusLineConfigured is false when a user statusLine was kept.
	StatusLineConfigured bool
}

// Files returns every asset result across roots in install order.
func (r InstallReport) Files() []FileResult {
	var out []FileResult
	for _, root := range r.Roots {
		out = append(out, root.Files...)
	}
	return out
}

// Failures returns every failed file, hook script and settings write.
func (r InstallReport) Failures() []error {
	var errs []error
	for _, f := range append(r.Files(), r.Hooks...) {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	if r.SettingsErr != nil {
		errs = append(errs, r.SettingsErr)
	}
	return errs
}

// AnyFailed reports whether any step failed.
func (r InstallReport) AnyFailed() bool {
	return len(r.Failures()) > 0
}

// Err joins every failure, or returns nil.
func (r InstallReport) Err() error {
	return errors.Join(r.Failures()...)
}

// Roots returns the base roots selected by scope, global first.
func (in *Installer) Roots(scope manifest.Scope) []manifest.BaseRoot {
	switch scope {
	case manifest.ScopeGlobal:
		return []manifest.BaseRoot{in.global()}
	case manifest.ScopeLocal:
		return []manifest.BaseRoot{in.local()}
	default:
		return []manifest.BaseRoot{in.global(), in.local()}
	}
}

func (in *Installer) global() manifest.BaseRoot {
	return manifest.BaseRoot{Scope: manifest.ScopeGlobal, Path: in.GlobalRoot}
}

func (in *Installer) local() manifest.BaseRoot {
	return manifest.BaseRoot{Scope: manifest.ScopeLocal, Path: in.LocalRoot}
}

func (in *Installer) binPath() string {
	if in.BinPath != "" {
		return in.BinPath
	}
	return DefaultBinary
}

func (in *Installer) confirm(ctx context.Context, c Confirmation) error {
	if in.Confirmer == nil {
		return nil
	}
	ok, err := in.Confirmer.Confirm(ctx, c)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

// Install writes the bundle to every root in scope, then installs the hook
// scripts and registers them in the global settings exactly once. An
// existing installation in any selected root triggers one confirmation; a
// decline returns ErrCancelled before anything is written. Per-file
// failures are recorded in the report, not returned.
func (in *Installer) Install(ctx context.Context, scope manifest.Scope) (InstallReport, error) {
	if in.Bundle == nil {
		return InstallReport{}, fmt.Errorf("install: no bundle")
	}
	report := InstallReport{Scope: scope, Version: in.Bundle.Version()}

	var manifests []manifest.Manifest
	for _, root := range in.Roots(scope) {
		m := manifest.Build(in.Bundle, root)
		manifests = append(manifests, m)
		if probe.ExistsAny(m.Destinations()) {
			report.Overwrite = true
		}
	}

	if report.Overwrite {
		debug.Logf("install: existing files found for scope %s", scope)
		err := in.confirm(ctx, Confirmation{
			Question: "Hydra agents already installed. Overwrite?",
			Default:  true,
		})
		if err != nil {
			return report, err
		}
	}

	for _, m := range manifests {
		rr := RootResult{Root: m.Root}
		for _, rec := range m.Records {
			res := FileResult{
				Root:  m.Root,
				Kind:  rec.Kind,
				Key:   rec.Key,
				Rel:   rec.Rel,
				Path:  rec.Dest,
				Model: rec.Model,
			}
			res.Err = writeAsset(rec.Dest, rec.Content, 0o644)
			res.Exists = res.Err == nil
			debug.Logf("install: %s -> %s (err=%v)", rec.Rel, rec.Dest, res.Err)
			rr.Files = append(rr.Files, res)
		}
		report.Roots = append(report.Roots, rr)
	}

	in.installHooks(&report)
	return report, nil
}

// installHooks writes every hook script into the global hooks directory and
// merges their registration into the global settings document.
func (in *Installer) installHooks(report *InstallReport) {
	global := in.global()
	paths := make(map[string]string, len(in.Bundle.Hooks))
	for _, h := range in.Bundle.Hooks {
		dest := filepath.Join(global.HooksDir(), h.FileName())
		res := FileResult{Root: global, Kind: KindHook, Key: h.Name, Rel: manifest.HooksDir + "/" + h.FileName(), Path: dest}
		res.Err = writeAsset(dest, h.Render(in.binPath()), 0o755)
		if res.Err == nil {
			// WriteFile keeps the mode of an existing file.
			if err := os.Chmod(dest, 0o755); err != nil {
				res.Err = wrapWrite(dest, err)
			}
		}
		res.Exists = res.Err == nil
		debug.Logf("install: hook %s -> %s (err=%v)", h.Name, dest, res.Err)
		report.Hooks = append(report.Hooks, res)
		paths[h.Name] = dest
	}

	report.SettingsPath = global.SettingsPath()
	doc := settings.Load(report.SettingsPath)
	debug.Logf("install: settings %s loaded (%s)", report.SettingsPath, doc.Source)
	if doc.Source == settings.SourceCorrupt {
		backup, err := settings.Backup(report.SettingsPath)
		if err != nil {
			report.SettingsErr = wrapWrite(report.SettingsPath, err)
			debug.Logf("install: settings left untouched: %v", err)
			return
		}
		report.SettingsBackup = backup
		debug.Logf("install: corrupt settings copied to %s", backup)
	}
	report.StatusLineConfigured = doc.MergeHooks(settings.Registration{
		SessionStartCommand: paths[bundle.HookCheckUpdate],
		PostToolUseCommand:  paths[bundle.HookAutoGuard],
		StatusLineCommand:   paths[bundle.HookStatusLine],
	})
	if err := settings.Save(report.SettingsPath, doc); err != nil {
		report.SettingsErr = wrapWrite(report.SettingsPath, err)
	}
	debug.Logf("install: settings saved (statusLine=%t err=%v)", report.StatusLineConfigured, report.SettingsErr)
}

func writeAsset(dest string, content []byte, perm os.FileMode) error {
	//nolint:gosec // G301: host config directories need standard permissions
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return wrapWrite(dest, err)
	}
	//nolint:gosec // G306: assets and hook scripts must stay readable by the host
	if err := os.WriteFile(dest, content, perm); err != nil {
		return wrapWrite(dest, err)
	}
	return nil
}

func wrapWrite(path string, err error) error {
	code := hyerrors.CodeWriteFailed
	if errors.Is(err, fs.ErrPermission) {
		code = hyerrors.CodePermissionDenied
	}
	return hyerrors.New(code, fmt.Sprintf("write %s: %v", path, err), err)
}
