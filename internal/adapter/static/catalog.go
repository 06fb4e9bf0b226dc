package static

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	portcatalog "github.com/alanyang/prompt-hub/internal/port/catalog"
)

//go:embed default_prompts.json
var defaultPrompts []byte

var _ portcatalog.Source = (*Source)(nil)

// document is the bundled catalog format: { "prompts": [...] }.
type document struct {
	Prompts []domainprompt.Prompt `json:"prompts" yaml:"prompts"`
}

// Source serves the bundled catalog, or a JSON/YAML file on disk.
// The file carries a single language, so Load ignores the language argument.
type Source struct {
	path string
}

// Embedded returns the source compiled into the binary.
func Embedded() *Source { return &Source{} }

// File returns a source reading path on every Load.
func File(path string) *Source { return &Source{path: path} }

func (s *Source) Path() string { return s.path }

func (s *Source) Load(_ context.Context, _ string) ([]domainprompt.Prompt, error) {
	if s.path == "" {
		return Parse(defaultPrompts, ".json")
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(raw, filepath.Ext(s.path))
}

// Parse decodes a catalog document. ext selects YAML for .yaml/.yml and JSON
// otherwise.
func Parse(raw []byte, ext string) ([]domainprompt.Prompt, error) {
	var doc document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml catalog: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding json catalog: %w", err)
		}
	}
	if doc.Prompts == nil {
		return []domainprompt.Prompt{}, nil
	}
	return doc.Prompts, nil
}
