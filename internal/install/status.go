package install

import (
	"path/filepath"

	"hydra/internal/bundle"
	"hydra/internal/manifest"
	"hydra/internal/probe"
	"hydra/internal/settings"
	"hydra/internal/update"
)

// EntryStatus is one manifest record and whether it is on disk.
type EntryStatus struct {
	Record    manifest.AssetRecord
	Installed bool
}

// LocationStatus describes one root.
type LocationStatus struct {
	Root    manifest.BaseRoot
	Entries []EntryStatus
	// Version is the installed VERSION marker, empty when absent.
	Version string
}

// Installed counts records present on disk.
func (l LocationStatus) Installed() int {
	n := 0
	for _, e := range l.Entries {
		if e.Installed {
			n++
		}
	}
	return n
}

// Total counts records in the manifest.
func (l LocationStatus) Total() int { return len(l.Entries) }

// OfKind filters entries by record kind.
func (l LocationStatus) OfKind(kind manifest.Kind) []EntryStatus {
	var out []EntryStatus
	for _, e := range l.Entries {
		if e.Record.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// HookStatus reports one hook script in the global hooks directory.
type HookStatus struct {
	Name      string
	Path      string
	Installed bool
}

// RegistrationStatus reports Hydra's entries in the global settings.
type RegistrationStatus struct {
	Source       settings.Source
	SessionStart bool
	PostToolUse  bool
	StatusLine   bool
}

// StatusReport is a read-only snapshot of both roots.
type StatusReport struct {
	// BundleVersion is the version this binary would install.
	BundleVersion string
	Global        LocationStatus
	Local         LocationStatus
	Hooks         []HookStatus
	Settings      RegistrationStatus
	// Update is the last cached update check, nil when none is readable.
	Update *update.Cache
}

// Status inspects both roots without writing anything.
func (in *Installer) Status() StatusReport {
	report := StatusReport{
		BundleVersion: in.Bundle.Version(),
		Global:        locationStatus(manifest.Build(in.Bundle, in.global())),
		Local:         locationStatus(manifest.Build(in.Bundle, in.local())),
	}

	global := in.global()
	for _, name := range in.hookNames() {
		dest := filepath.Join(global.HooksDir(), name+bundle.HookScriptExt)
		report.Hooks = append(report.Hooks, HookStatus{Name: name, Path: dest, Installed: probe.Exists(dest)})
	}

	doc := settings.Load(global.SettingsPath())
	report.Settings = RegistrationStatus{
		Source:       doc.Source,
		SessionStart: doc.OwnedEntries(settings.EventSessionStart) > 0,
		PostToolUse:  doc.OwnedEntries(settings.EventPostToolUse) > 0,
		StatusLine:   doc.StatusLineOwned(),
	}

	if cache, err := update.ReadCache(global.UpdateCachePath()); err == nil {
		report.Update = &cache
	}
	return report
}

func locationStatus(m manifest.Manifest) LocationStatus {
	ls := LocationStatus{Root: m.Root}
	for _, rec := range m.Records {
		ls.Entries = append(ls.Entries, EntryStatus{Record: rec, Installed: probe.Exists(rec.Dest)})
	}
	if v, ok := probe.ReadTrimmed(m.Root.VersionMarkerPath()); ok {
		ls.Version = v
	}
	return ls
}
