package search

import (
	"context"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
)

// Index is a full-text index over the prompt list.
type Index interface {
	// Rebuild replaces the indexed documents with prompts.
	Rebuild(ctx context.Context, prompts []domainprompt.Prompt) error
	// Search returns matching prompt ids, best match first.
	Search(ctx context.Context, query string, limit int) ([]string, error)
}
