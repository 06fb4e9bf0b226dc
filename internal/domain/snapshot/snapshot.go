package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alanyang/prompt-hub/internal/domain/prompt"
)

// Filename is the single gist file holding a workspace snapshot.
const Filename = "myprompt-hub-data.json"

// Description is used when a new gist is created.
const Description = "MyPromptHub saved prompts and templates"

// MaxFieldLength is the longest text field kept verbatim in a snapshot.
const MaxFieldLength = 10000

// TruncationMarker is appended to every shortened field.
const TruncationMarker = "... [content truncated for storage]"

var ErrInvalidSnapshot = errors.New("invalid gist content structure")

// Snapshot is a flat serialization of the whole workspace.
// It replaces the remote copy wholesale on every sync.
type Snapshot struct {
	SavedPrompts  []prompt.Prompt `json:"savedPrompts"`
	CustomPrompts []prompt.Prompt `json:"customPrompts"`
	Folders       []prompt.Folder `json:"folders"`
	LastSynced    string          `json:"lastSynced"`
}

func New(saved, custom []prompt.Prompt, folders []prompt.Folder, now time.Time) Snapshot {
	return Snapshot{
		SavedPrompts:  prompt.CloneAll(saved),
		CustomPrompts: prompt.CloneAll(custom),
		Folders:       append([]prompt.Folder{}, folders...),
		LastSynced:    prompt.Timestamp(now),
	}
}

// Sanitize returns a deep copy with long content and description fields cut to
// MaxFieldLength characters plus TruncationMarker.
func Sanitize(s Snapshot) Snapshot {
	out := Snapshot{
		SavedPrompts:  prompt.CloneAll(s.SavedPrompts),
		CustomPrompts: prompt.CloneAll(s.CustomPrompts),
		Folders:       append([]prompt.Folder{}, s.Folders...),
		LastSynced:    s.LastSynced,
	}
	for _, list := range [][]prompt.Prompt{out.SavedPrompts, out.CustomPrompts} {
		for i := range list {
			list[i].Content = truncate(list[i].Content)
			list[i].Description = truncate(list[i].Description)
		}
	}
	return out
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxFieldLength {
		return s
	}
	return string([]rune(s)[:MaxFieldLength]) + TruncationMarker
}

// Encode renders the snapshot as the indented JSON document stored in the
// gist. HTML characters are written as-is.
func Encode(s Snapshot) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode parses a gist document. savedPrompts, customPrompts and folders must
// all be JSON arrays; a missing lastSynced defaults to now.
func Decode(raw []byte, now time.Time) (Snapshot, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(raw, &shape); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	for _, field := range []string{"savedPrompts", "customPrompts", "folders"} {
		if !isArray(shape[field]) {
			return Snapshot{}, fmt.Errorf("%w: %s must be an array", ErrInvalidSnapshot, field)
		}
	}

	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if s.LastSynced == "" {
		s.LastSynced = prompt.Timestamp(now)
	}
	return s, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
