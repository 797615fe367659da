// Package manifest describes what Hydra installs under a base root. A
// Manifest is plain data: building one does no I/O, so the same bundle and
// root always yield the same records in the same order.
package manifest

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"hydra/internal/bundle"
)

// Kind classifies an asset record.
type Kind string

const (
	KindAgent     Kind = "agent"
	KindSkill     Kind = "skill"
	KindReference Kind = "reference"
	KindCommand   Kind = "command"
	KindVersion   Kind = "version"
)

// Relative locations under a base root, slash separated.
const (
	AgentsDir     = "agents"
	SkillDir      = "skills/hydra"
	SkillFile     = SkillDir + "/SKILL.md"
	ReferencesDir = SkillDir + "/references"
	VersionFile   = SkillDir + "/VERSION"
	CommandsDir   = "commands/hydra"

	HooksDir        = "hooks"
	SettingsFile    = "settings.json"
	UpdateCacheFile = "cache/update-check.json"
)

// Scope selects which base roots an operation targets.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
	ScopeBoth   Scope = "both"
)

// ParseScope converts user input into a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeLocal:
		return ScopeLocal, nil
	case ScopeBoth:
		return ScopeBoth, nil
	default:
		return "", fmt.Errorf("invalid scope %q (want global, local or both)", s)
	}
}

// BaseRoot is an install location. Only the global root owns the hooks
// directory, the update cache and settings.json.
type BaseRoot struct {
	Scope Scope
	Path  string
}

// Join resolves a slash-separated relative path under the root.
func (r BaseRoot) Join(rel string) string {
	return filepath.Join(r.Path, filepath.FromSlash(rel))
}

// HooksDir returns the hook script directory. Meaningful for the global root only.
func (r BaseRoot) HooksDir() string { return r.Join(HooksDir) }

// SettingsPath returns the host settings document. Meaningful for the global root only.
func (r BaseRoot) SettingsPath() string { return r.Join(SettingsFile) }

// UpdateCachePath returns the update-check cache file. Meaningful for the global root only.
func (r BaseRoot) UpdateCachePath() string { return r.Join(UpdateCacheFile) }

// VersionMarkerPath returns the destination of the VERSION record.
func (r BaseRoot) VersionMarkerPath() string { return r.Join(VersionFile) }

// Label is the human readable name of the root used in reports.
func (r BaseRoot) Label() string {
	switch r.Scope {
	case ScopeGlobal:
		return "Global (" + r.Path + ")"
	case ScopeLocal:
		return "Local (" + r.Path + ")"
	default:
		return r.Path
	}
}

// AssetRecord is one file the manifest wants under a root.
type AssetRecord struct {
	Kind    Kind
	Key     string
	Rel     string
	Content []byte
	Dest    string
	// Model is the agent's model tier, empty for other kinds.
	Model       string
	Description string
}

// Manifest is the ordered list of records for one root.
type Manifest struct {
	Root    BaseRoot
	Records []AssetRecord
}

// Build enumerates agents, the skill document, references, commands and the
// version marker, in that order.
func Build(b *bundle.Bundle, root BaseRoot) Manifest {
	m := Manifest{Root: root}
	if b == nil {
		return m
	}
	add := func(rec AssetRecord) {
		rec.Dest = root.Join(rec.Rel)
		m.Records = append(m.Records, rec)
	}

	for _, agent := range b.Agents {
		add(AssetRecord{
			Kind:        KindAgent,
			Key:         agent.Key,
			Rel:         path.Join(AgentsDir, agent.Key+".md"),
			Content:     agent.Content,
			Model:       agent.Model,
			Description: agent.Description,
		})
	}
	add(AssetRecord{Kind: KindSkill, Key: "SKILL", Rel: SkillFile, Content: b.Skill})
	for _, ref := range b.References {
		add(AssetRecord{
			Kind:    KindReference,
			Key:     ref.Key,
			Rel:     path.Join(ReferencesDir, ref.Key+".md"),
			Content: ref.Content,
		})
	}
	for _, cmd := range b.Commands {
		add(AssetRecord{
			Kind:    KindCommand,
			Key:     cmd.Key,
			Rel:     path.Join(CommandsDir, cmd.Key+".md"),
			Content: cmd.Content,
		})
	}
	add(AssetRecord{Kind: KindVersion, Key: "VERSION", Rel: VersionFile, Content: b.VersionMarker})
	return m
}

// Destinations lists every record's destination in manifest order.
func (m Manifest) Destinations() []string {
	dests := make([]string, 0, len(m.Records))
	for _, rec := range m.Records {
		dests = append(dests, rec.Dest)
	}
	return dests
}

// OfKind returns the records of one kind in manifest order.
func (m Manifest) OfKind(kind Kind) []AssetRecord {
	var out []AssetRecord
	for _, rec := range m.Records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}
