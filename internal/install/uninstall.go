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

// UninstallReport describes a finished uninstall.
type UninstallReport struct {
	// NothingToRemove is set when no Hydra file or registration was found.
	NothingToRemove bool
	Files           []FileResult

	SettingsPath    string
	SettingsChanged bool
	SettingsErr     error
}

// Removed counts files that are gone.
func (r UninstallReport) Removed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts files that could not be removed, plus a failed settings
// write.
func (r UninstallReport) Failed() int {
	n := len(r.Files) - r.Removed()
	if r.SettingsErr != nil {
		n++
	}
	return n
}

// Err joins every failure, or returns nil.
func (r UninstallReport) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	if r.SettingsErr != nil {
		errs = append(errs, r.SettingsErr)
	}
	return errors.Join(errs...)
}

// Plan lists the existing files an uninstall would remove: manifest
// destinations in both roots, then hook scripts and the update cache.
func (in *Installer) Plan() []FileResult {
	var plan []FileResult
	for _, root := range in.Roots(manifest.ScopeBoth) {
		m := manifest.Build(in.Bundle, root)
		for _, rec := range m.Records {
			if !probe.Exists(rec.Dest) {
				continue
			}
			plan = append(plan, FileResult{
				Root: root, Kind: rec.Kind, Key: rec.Key, Rel: rec.Rel,
				Path: rec.Dest, Model: rec.Model, Exists: true,
			})
		}
	}

	global := in.global()
	for _, name := range in.hookNames() {
		file := name + bundle.HookScriptExt
		dest := filepath.Join(global.HooksDir(), file)
		if probe.Exists(dest) {
			plan = append(plan, FileResult{
				Root: global, Kind: KindHook, Key: name,
				Rel: manifest.HooksDir + "/" + file, Path: dest, Exists: true,
			})
		}
	}
	if cache := global.UpdateCachePath(); probe.Exists(cache) {
		plan = append(plan, FileResult{
			Root: global, Kind: KindCache, Key: "update-check",
			Rel: manifest.UpdateCacheFile, Path: cache, Exists: true,
		})
	}
	return plan
}

// Uninstall removes every Hydra file from both roots, then deregisters the
// hooks from the global settings. With interactive set the Confirmer is
// asked once, naming the number of files and any hook registrations; a
// decline returns ErrCancelled before anything is removed or rewritten. One failed removal never stops the rest.
func (in *Installer) Uninstall(ctx context.Context, interactive bool) (UninstallReport, error) {
	global := in.global()
	report := UninstallReport{SettingsPath: global.SettingsPath()}

	plan := in.Plan()
	doc := settings.Load(report.SettingsPath)
	registered := doc.Source == settings.SourceFile &&
		(doc.OwnedEntries(settings.EventSessionStart) > 0 ||
			doc.OwnedEntries(settings.EventPostToolUse) > 0 ||
			doc.StatusLineOwned())

	if len(plan) == 0 && !registered {
		report.NothingToRemove = true
		return report, nil
	}

	if interactive {
		details := make([]string, 0, len(plan)+1)
		for _, f := range plan {
			details = append(details, fmt.Sprintf("[%s] %s", f.Root.Scope, f.Rel))
		}
		question := fmt.Sprintf("Remove %d Hydra file(s)?", len(plan))
		if registered {
			details = append(details, "[global] "+manifest.SettingsFile+" (hook registrations)")
			question = fmt.Sprintf("Remove %d Hydra file(s) and the hook registrations?", len(plan))
		}
		err := in.confirm(ctx, Confirmation{
			Question: question,
			Details:  details,
			Default:  false,
		})
		if err != nil {
			return report, err
		}
	}

	for _, f := range plan {
		f.Err = removeFile(f.Path)
		f.Exists = f.Err != nil
		debug.Logf("uninstall: %s (err=%v)", f.Path, f.Err)
		report.Files = append(report.Files, f)
	}

	// A missing or corrupt document is never rewritten.
	if doc.Source == settings.SourceFile && doc.Deregister() {
		report.SettingsChanged = true
		if err := settings.Save(report.SettingsPath, doc); err != nil {
			report.SettingsErr = wrapWrite(report.SettingsPath, err)
		}
	}
	debug.Logf("uninstall: removed=%d failed=%d settingsChanged=%t", report.Removed(), report.Failed(), report.SettingsChanged)
	return report, nil
}

func (in *Installer) hookNames() []string {
	if in.Bundle == nil {
		return nil
	}
	return in.Bundle.HookNames()
}

// removeFile deletes path. A file that vanished in the meantime counts as
// removed.
func removeFile(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	code := hyerrors.CodeRemoveFailed
	if errors.Is(err, fs.ErrPermission) {
		code = hyerrors.CodePermissionDenied
	}
	return hyerrors.New(code, fmt.Sprintf("remove %s: %v", path, err), err)
}
