package prompt

import (
	"slices"
	"strings"
	"time"
)

// Type distinguishes catalog templates from workspace-owned prompts.
type Type string

const (
	TypeSystemTemplate Type = "system-template"
	TypeLocalTemplate  Type = "local-template"
	TypeLocal          Type = "local"
)

// Id prefixes for prompts created inside a workspace.
const (
	CustomIDPrefix = "custom-"
	SavedIDPrefix  = "saved-"
)

type VariableKind string

const (
	KindText     VariableKind = "text"
	KindTextarea VariableKind = "textarea"
	KindNumber   VariableKind = "number"
	KindEmail    VariableKind = "email"
	KindURL      VariableKind = "url"
	KindDate     VariableKind = "date"
	KindSelect   VariableKind = "select"
)

var validKinds = map[VariableKind]bool{
	KindText:     true,
	KindTextarea: true,
	KindNumber:   true,
	KindEmail:    true,
	KindURL:      true,
	KindDate:     true,
	KindSelect:   true,
}

func (k VariableKind) Valid() bool { return validKinds[k] }

// Variable is a named, typed placeholder within a prompt's content.
type Variable struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Type        VariableKind `json:"type" yaml:"type"`
	Placeholder string       `json:"placeholder" yaml:"placeholder"`
	Options     []string     `json:"options,omitempty" yaml:"options,omitempty"`
}

type Prompt struct {
	ID               string     `json:"id" yaml:"id"`
	Slug             string     `json:"slug,omitempty" yaml:"slug,omitempty"`
	Title            string     `json:"title" yaml:"title"`
	Category         string     `json:"category" yaml:"category"`
	Description      string     `json:"description" yaml:"description"`
	Content          string     `json:"content" yaml:"content"`
	Variables        []Variable `json:"variables" yaml:"variables"`
	Tags             []string   `json:"tags" yaml:"tags"`
	CreatedAt        string     `json:"createdAt" yaml:"createdAt"`
	Type             Type       `json:"type,omitempty" yaml:"type,omitempty"`
	PositiveRatings  int        `json:"positiveRatings" yaml:"positiveRatings"`
	NegativeRatings  int        `json:"negativeRatings" yaml:"negativeRatings"`
	UserRating       *bool      `json:"userRating" yaml:"userRating,omitempty"`
	OriginalPromptID string     `json:"originalPromptId,omitempty" yaml:"originalPromptId,omitempty"`
	Folder           string     `json:"folder,omitempty" yaml:"folder,omitempty"`
}

// IsSystem reports whether the prompt is an immutable catalog template.
func (p Prompt) IsSystem() bool { return p.Type == TypeSystemTemplate }

// IsLocalOnly reports whether the prompt can never have a database row.
func (p Prompt) IsLocalOnly() bool { return strings.HasPrefix(p.ID, CustomIDPrefix) }

// Clone returns a copy that shares no slices or pointers with p.
func (p Prompt) Clone() Prompt {
	out := p
	out.Tags = slices.Clone(p.Tags)
	if p.Variables != nil {
		out.Variables = make([]Variable, len(p.Variables))
		for i, v := range p.Variables {
			v.Options = slices.Clone(v.Options)
			out.Variables[i] = v
		}
	}
	if p.UserRating != nil {
		r := *p.UserRating
		out.UserRating = &r
	}
	return out
}

type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// Rating is one user's vote on a prompt.
type Rating struct {
	ID        string    `json:"id"`
	PromptID  int64     `json:"promptId"`
	Positive  bool      `json:"rating"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AnonymousUser is recorded on ratings cast without a user id.
const AnonymousUser = "anonymous"

// Counts is the authoritative aggregate computed from rating rows.
type Counts struct {
	Positive int `json:"positiveRatings"`
	Negative int `json:"negativeRatings"`
}

// Timestamp formats t the way createdAt fields are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// CloneAll deep-copies a prompt slice. A nil input yields an empty slice.
func CloneAll(prompts []Prompt) []Prompt {
	out := make([]Prompt, len(prompts))
	for i, p := range prompts {
		out[i] = p.Clone()
	}
	return out
}
