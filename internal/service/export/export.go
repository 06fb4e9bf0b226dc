package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Document is a rendered export ready to be served as a download.
type Document struct {
	Body        string
	ContentType string
	Filename    string
}

// PromptJSON renders one prompt as indented JSON.
func PromptJSON(p domainprompt.Prompt) (string, error) {
	return indent(p)
}

// PromptsJSON renders a list as an indented JSON array; nil renders as [].
func PromptsJSON(prompts []domainprompt.Prompt) (string, error) {
	if prompts == nil {
		prompts = []domainprompt.Prompt{}
	}
	return indent(prompts)
}

func PromptText(p domainprompt.Prompt) string {
	return "# " + p.Title + "\n\n" + p.Description + "\n\n" + p.Content
}

// PromptsMarkdown renders each prompt as a text section followed by a rule.
func PromptsMarkdown(prompts []domainprompt.Prompt) string {
	var b strings.Builder
	for _, p := range prompts {
		b.WriteString(PromptText(p))
		b.WriteString("\n\n---\n\n")
	}
	return b.String()
}

// Prompt exports a single prompt as json or text.
func Prompt(p domainprompt.Prompt, format Format) (Document, error) {
	switch format {
	case FormatJSON, "":
		body, err := PromptJSON(p)
		if err != nil {
			return Document{}, err
		}
		return Document{Body: body, ContentType: "application/json", Filename: filename(p.Title, "json")}, nil
	case FormatText:
		return Document{Body: PromptText(p), ContentType: "text/plain; charset=utf-8", Filename: filename(p.Title, "txt")}, nil
	}
	return Document{}, fmt.Errorf("%w: %q for a single prompt", ErrUnsupportedFormat, format)
}

// Prompts exports a list as json or markdown.
func Prompts(prompts []domainprompt.Prompt, format Format) (Document, error) {
	switch format {
	case FormatJSON, "":
		body, err := PromptsJSON(prompts)
		if err != nil {
			return Document{}, err
		}
		return Document{Body: body, ContentType: "application/json", Filename: "saved-prompts.json"}, nil
	case FormatMarkdown:
		return Document{Body: PromptsMarkdown(prompts), ContentType: "text/markdown; charset=utf-8", Filename: "saved-prompts.md"}, nil
	}
	return Document{}, fmt.Errorf("%w: %q for a prompt list", ErrUnsupportedFormat, format)
}

// indent matches browser JSON.stringify(v, null, 2): no HTML escaping and no
// trailing newline.
func indent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func filename(title, ext string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, title)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "prompt"
	}
	return slug + "." + ext
}
