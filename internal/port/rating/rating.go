package rating

import (
	"context"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
)

// Repository stores rating rows and the cached counters derived from them.
// [DIP] service/library depends on this interface, not on Postgres.
type Repository interface {
	// ResolveID maps a prompt id (numeric id or slug) to its row id.
	// ok is false when the prompt has no database row.
	ResolveID(ctx context.Context, promptID string) (id int64, ok bool, err error)

	// Vote upserts the (prompt, user) rating row and returns the counts recomputed
	// from source rows, which also overwrite the cached counters on the prompt row.
	// It returns domainprompt.ErrNotFound when promptID has no row.
	Vote(ctx context.Context, promptID int64, userID string, positive bool) (domainprompt.Counts, error)

	// UserRatings returns the user's vote per prompt row id.
	UserRatings(ctx context.Context, userID string) (map[int64]bool, error)
}
