package catalog

import (
	"context"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
)

// Source loads the base set of prompt templates.
// [LSP] The Postgres translation join and the static bundled file are both valid sources.
type Source interface {
	// Load returns every template translated into language.
	// An empty result is not an error.
	Load(ctx context.Context, language string) ([]domainprompt.Prompt, error)
}
