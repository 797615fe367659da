package bundle

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Meta is the frontmatter carried by agent and command documents.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Model       string `yaml:"model"`
	Tools       string `yaml:"tools,omitempty"`
}

// ParseFrontMatter extracts the YAML block fenced by `---` lines at the top
// of content. ok is false when the document has no fence or the block does
// not parse.
func ParseFrontMatter(content []byte) (Meta, bool) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Meta{}, false
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Meta{}, false
	}
	var meta Meta
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return Meta{}, false
	}
	return meta, true
}
