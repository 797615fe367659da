// Package bundle exposes the Hydra assets compiled into the binary: agent
// definitions, the skill document and its references, slash commands, hook
// script templates and the release VERSION marker.
//
// Asset contents are opaque to the rest of the program. The only thing
// parsed out of them is the YAML frontmatter of agent definitions, which
// status output uses to show each head's model tier.
package bundle

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed files
var filesFS embed.FS

// Hook script names. Each is installed as <name>.sh in the global hooks
// directory and registered in settings.json by path.
const (
	HookCheckUpdate = "hydra-check-update"
	HookStatusLine  = "hydra-statusline"
	HookAutoGuard   = "hydra-auto-guard"
)

// HookScriptExt is the file extension given to installed hook scripts.
const HookScriptExt = ".sh"

// binPlaceholder is replaced in hook templates with the hydra binary path.
const binPlaceholder = "{{HYDRA_BIN}}"

// Agent is one head definition.
type Agent struct {
	Key         string
	Name        string
	Description string
	Model       string
	Content     []byte
}

// Document is a named markdown asset (reference or command).
type Document struct {
	Key     string
	Content []byte
}

// HookScript is a hook template keyed by hook name.
type HookScript struct {
	Name     string
	Template []byte
}

// FileName returns the on-disk file name of the installed script.
func (h HookScript) FileName() string {
	return h.Name + HookScriptExt
}

// Render substitutes the hydra binary path into the template.
func (h HookScript) Render(binPath string) []byte {
	return bytes.ReplaceAll(h.Template, []byte(binPlaceholder), []byte(binPath))
}

// Bundle is the full asset set. Slices are sorted by key.
type Bundle struct {
	Agents     []Agent
	Skill      []byte
	References []Document
	Commands   []Document
	Hooks      []HookScript
	// VersionMarker is the raw content of the VERSION file.
	VersionMarker []byte
}

// Version returns the trimmed release version carried by the bundle.
func (b *Bundle) Version() string {
	if b == nil {
		return ""
	}
	return strings.TrimSpace(string(b.VersionMarker))
}

// HookNames returns the names of every hook script in the bundle.
func (b *Bundle) HookNames() []string {
	names := make([]string, 0, len(b.Hooks))
	for _, h := range b.Hooks {
		names = append(names, h.Name)
	}
	return names
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
	defaultErr    error
)

// Default returns the bundle embedded in the binary. The result is cached.
func Default() (*Bundle, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(filesFS, "files")
		if err != nil {
			defaultErr = fmt.Errorf("open embedded bundle: %w", err)
			return
		}
		defaultBundle, defaultErr = Load(sub)
	})
	return defaultBundle, defaultErr
}

// Load reads a bundle laid out like the embedded files directory:
//
//	agents/*.md, SKILL.md, references/*.md, commands/*.md, hooks/*.sh, VERSION
func Load(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{}

	agentDocs, err := readDocs(fsys, "agents", ".md")
	if err != nil {
		return nil, err
	}
	for _, doc := range agentDocs {
		agent := Agent{Key: doc.Key, Name: doc.Key, Content: doc.Content}
		if meta, ok := ParseFrontMatter(doc.Content); ok {
			if meta.Name != "" {
				agent.Name = meta.Name
			}
			agent.Description = meta.Description
			agent.Model = meta.Model
		}
		b.Agents = append(b.Agents, agent)
	}

	if b.Skill, err = fs.ReadFile(fsys, "SKILL.md"); err != nil {
		return nil, fmt.Errorf("read skill: %w", err)
	}
	if b.References, err = readDocs(fsys, "references", ".md"); err != nil {
		return nil, err
	}
	if b.Commands, err = readDocs(fsys, "commands", ".md"); err != nil {
		return nil, err
	}

	hookDocs, err := readDocs(fsys, "hooks", HookScriptExt)
	if err != nil {
		return nil, err
	}
	for _, doc := range hookDocs {
		b.Hooks = append(b.Hooks, HookScript{Name: doc.Key, Template: doc.Content})
	}

	if b.VersionMarker, err = fs.ReadFile(fsys, "VERSION"); err != nil {
		return nil, fmt.Errorf("read version marker: %w", err)
	}
	return b, nil
}

// readDocs returns every file with the given extension in dir, keyed by
// file name without extension. fs.ReadDir sorts by name.
func readDocs(fsys fs.FS, dir, ext string) ([]Document, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ext {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s/%s: %w", dir, entry.Name(), err)
		}
		docs = append(docs, Document{
			Key:     strings.TrimSuffix(entry.Name(), ext),
			Content: content,
		})
	}
	return docs, nil
}
