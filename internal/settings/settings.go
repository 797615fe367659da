// Package settings reads and patches the host editor's settings.json.
//
// The document belongs to the user. Hydra owns exactly three things inside
// it: its entries in hooks.SessionStart, its entries in hooks.PostToolUse,
// and statusLine when statusLine points at a Hydra script. An entry is owned
// when one of its command strings contains Marker. Everything else is kept
// as raw JSON in its original key order and written back untouched.
//
// Defaulting rules for Load:
//   - missing file: empty document, Source == SourceMissing
//   - empty or whitespace-only file: empty document, Source == SourceMissing
//   - unparsable file or a top level that is not an object: empty document,
//     Source == SourceCorrupt
//   - otherwise: the parsed document, Source == SourceFile
//
// JSONC comments and trailing commas are accepted on read and dropped on
// write.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"hydra/internal/debug"
	"hydra/internal/fsutil"
)

// Marker identifies commands registered by Hydra.
const Marker = "hydra-"

// Event names of the hook arrays Hydra registers into.
const (
	EventSessionStart = "SessionStart"
	EventPostToolUse  = "PostToolUse"
)

const (
	keyHooks      = "hooks"
	keyStatusLine = "statusLine"
)

// DefaultPostToolUseMatcher limits the auto-guard hook to file edits.
const DefaultPostToolUseMatcher = "Write|Edit|MultiEdit"

// Source records how a Document was obtained.
type Source int

const (
	SourceMissing Source = iota
	SourceFile
	SourceCorrupt
)

// String returns the string representation of a Source.
func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceCorrupt:
		return "corrupt"
	default:
		return "missing"
	}
}

// HookCommand is a single command action inside a hook entry.
type HookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

// HookEntry is one element of a hook event array.
type HookEntry struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []HookCommand `json:"hooks"`
}

// StatusLine is the statusLine registration.
type StatusLine struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Padding int    `json:"padding"`
}

// Registration holds the canonical commands Hydra registers.
type Registration struct {
	SessionStartCommand string
	PostToolUseCommand  string
	PostToolUseMatcher  string
	StatusLineCommand   string
}

// IsOwned reports whether a command string belongs to Hydra.
func IsOwned(command string) bool {
	return strings.Contains(command, Marker)
}

// Document is a parsed settings.json.
type Document struct {
	Source Source
	root   *object
}

// New returns an empty document.
func New() *Document {
	return &Document{Source: SourceMissing, root: newObject()}
}

// Parse decodes data as a settings document. Empty input yields an empty
// document.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}
	root, err := parseObject(jsonc.ToJSON(data))
	if err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &Document{Source: SourceFile, root: root}, nil
}

// Load reads path following the package defaulting rules. It never fails.
func Load(path string) *Document {
	//nolint:gosec // G304: settings path is derived from the install root
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			debug.Logf("settings: read %s: %v; using empty document", path, err)
		}
		return New()
	}
	doc, err := Parse(data)
	if err != nil {
		debug.Logf("settings: %s: %v; using empty document", path, err)
		doc = New()
		doc.Source = SourceCorrupt
	}
	return doc
}

// Save rewrites path with the whole document in a single rename.
func Save(path string, doc *Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	//nolint:gosec // G301: host config directory needs standard permissions
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// BackupSuffix is appended to the settings path for the copy Backup makes.
const BackupSuffix = ".bak"

// Backup copies the file at path byte for byte to path+BackupSuffix and
// returns the copy's path. Install calls it before replacing a document it
// could not parse.
func Backup(path string) (string, error) {
	//nolint:gosec // G304: settings path is derived from the install root
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read settings for backup: %w", err)
	}
	backup := path + BackupSuffix
	if err := fsutil.WriteFileAtomic(backup, data, 0o600); err != nil {
		return "", fmt.Errorf("write settings backup: %w", err)
	}
	return backup, nil
}

// Marshal renders the document with two-space indentation and a trailing
// newline.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return buf.Bytes(), nil
}

// Raw returns the raw JSON of a top-level key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	return d.root.get(key)
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.root.keys...)
}

// MergeHooks registers Hydra's hooks. Existing owned entries are swept from
// both event arrays before one canonical entry is appended to each, so
// repeated merges never accumulate. statusLine is written only when absent
// or already owned; the return value reports whether it was written.
func (d *Document) MergeHooks(reg Registration) bool {
	hooks := d.hooksObject()

	matcher := reg.PostToolUseMatcher
	if matcher == "" {
		matcher = DefaultPostToolUseMatcher
	}
	entries := map[string]HookEntry{
		EventSessionStart: {Hooks: []HookCommand{{Type: "command", Command: reg.SessionStartCommand}}},
		EventPostToolUse: {
			Matcher: matcher,
			Hooks:   []HookCommand{{Type: "command", Command: reg.PostToolUseCommand}},
		},
	}
	for _, event := range []string{EventSessionStart, EventPostToolUse} {
		kept := sweepOwned(arrayOf(hooks, event))
		kept = append(kept, mustMarshal(entries[event]))
		hooks.set(event, mustMarshal(kept))
	}
	d.root.set(keyHooks, mustMarshal(hooks))

	if raw, ok := d.root.get(keyStatusLine); ok && !statusLineOwned(raw) {
		return false
	}
	d.root.set(keyStatusLine, mustMarshal(StatusLine{Type: "command", Command: reg.StatusLineCommand}))
	return true
}

// Deregister removes every owned entry, drops event arrays and the hooks
// object when they become empty, and removes an owned statusLine. Values it
// cannot interpret are left alone. It reports whether the document changed.
func (d *Document) Deregister() bool {
	changed := false
	if hooks, ok := d.existingHooks(); ok {
		hooksChanged := false
		for _, event := range []string{EventSessionStart, EventPostToolUse} {
			raw, ok := hooks.get(event)
			if !ok {
				continue
			}
			before, ok := arrayElems(raw)
			if !ok {
				continue
			}
			kept := sweepOwned(before)
			switch {
			case len(kept) == 0:
				hooks.delete(event)
				hooksChanged = true
			case len(kept) != len(before):
				hooks.set(event, mustMarshal(kept))
				hooksChanged = true
			}
		}
		switch {
		case hooks.len() == 0:
			d.root.delete(keyHooks)
			changed = true
		case hooksChanged:
			d.root.set(keyHooks, mustMarshal(hooks))
			changed = true
		}
	}
	if raw, ok := d.root.get(keyStatusLine); ok && statusLineOwned(raw) {
		d.root.delete(keyStatusLine)
		changed = true
	}
	return changed
}

// OwnedEntries counts owned entries in one event array.
func (d *Document) OwnedEntries(event string) int {
	hooks, ok := d.existingHooks()
	if !ok {
		return 0
	}
	count := 0
	for _, raw := range arrayOf(hooks, event) {
		if entryOwned(raw) {
			count++
		}
	}
	return count
}

// StatusLineOwned reports whether statusLine is present and owned.
func (d *Document) StatusLineOwned() bool {
	raw, ok := d.root.get(keyStatusLine)
	return ok && statusLineOwned(raw)
}

// existingHooks parses the hooks object. ok is false when hooks is absent
// or is not an object.
func (d *Document) existingHooks() (*object, bool) {
	raw, ok := d.root.get(keyHooks)
	if !ok {
		return nil, false
	}
	hooks, err := parseObject(raw)
	if err != nil {
		return nil, false
	}
	return hooks, true
}

// hooksObject returns the hooks object for writing. A hooks value that is
// not an object is unusable by the host and is replaced with an empty one.
func (d *Document) hooksObject() *object {
	if hooks, ok := d.existingHooks(); ok {
		return hooks
	}
	if _, present := d.root.get(keyHooks); present {
		debug.Logf("settings: hooks is not an object; replacing")
	}
	return newObject()
}

// arrayOf returns the elements of an event array. A value that is not an
// array yields no elements.
func arrayOf(hooks *object, event string) []json.RawMessage {
	raw, ok := hooks.get(event)
	if !ok {
		return nil
	}
	elems, ok := arrayElems(raw)
	if !ok {
		debug.Logf("settings: hooks.%s is not an array", event)
	}
	return elems
}

func arrayElems(raw json.RawMessage) ([]json.RawMessage, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func sweepOwned(elems []json.RawMessage) []json.RawMessage {
	kept := make([]json.RawMessage, 0, len(elems))
	for _, raw := range elems {
		if !entryOwned(raw) {
			kept = append(kept, raw)
		}
	}
	return kept
}

// entryOwned decodes just enough of an array element to find its commands.
// Elements that do not decode are treated as user-owned.
func entryOwned(raw json.RawMessage) bool {
	var probe struct {
		Command string `json:"command"`
		Hooks   []struct {
			Command string `json:"command"`
		} `json:"hooks"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if IsOwned(probe.Command) {
		return true
	}
	for _, h := range probe.Hooks {
		if IsOwned(h.Command) {
			return true
		}
	}
	return false
}

func statusLineOwned(raw json.RawMessage) bool {
	var line struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(raw, &line); err != nil {
		return false
	}
	return IsOwned(line.Command)
}

// mustMarshal encodes values built from already-valid raw JSON. HTML
// escaping is off so user strings such as "a && b" keep their bytes.
func mustMarshal(v any) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("settings: encode: %v", err))
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}
