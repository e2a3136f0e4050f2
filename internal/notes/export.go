package notes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export writes notes as a JSON array (the local storage shape) or YAML.
func Export(w io.Writer, notes []Note, format string) error {
	if notes == nil {
		notes = []Note{}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(notes)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(notes); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

type markdownMeta struct {
	Title    string `yaml:"title" toml:"title" json:"title"`
	Category string `yaml:"category" toml:"category" json:"category"`
}

// ParseMarkdown reads a Markdown document with optional front matter into a
// Draft. The body becomes the content; fallbackTitle is used when the front
// matter has no title.
func ParseMarkdown(r io.Reader, fallbackTitle string) (Draft, error) {
	var meta markdownMeta
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: front matter: %w", ErrValidation, err)
	}
	title := meta.Title
	if strings.TrimSpace(title) == "" {
		title = fallbackTitle
	}
	return Draft{
		Title:    title,
		Content:  strings.TrimSpace(string(body)),
		Category: meta.Category,
	}.Normalize(), nil
}
