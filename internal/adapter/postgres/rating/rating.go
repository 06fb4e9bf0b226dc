package rating

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	portrating "github.com/alanyang/prompt-hub/internal/port/rating"
)

const foreignKeyViolation = "23503"

var _ portrating.Repository = (*Repository)(nil)

// Repository implements port/rating.Repository using Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ResolveID maps a prompt id to its row id. Ids with the custom- prefix never
// have a row; numeric ids are used as-is; anything else is looked up by slug.
func (r *Repository) ResolveID(ctx context.Context, promptID string) (int64, bool, error) {
	if strings.HasPrefix(promptID, domainprompt.CustomIDPrefix) {
		return 0, false, nil
	}
	if id, err := strconv.ParseInt(promptID, 10, 64); err == nil {
		return id, true, nil
	}

	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM prompts WHERE slug = $1`, promptID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolving prompt %s: %w", promptID, err)
	}
	return id, true, nil
}

// Vote upserts the user's rating and recomputes both counters from the rating
// rows, all in one transaction.
func (r *Repository) Vote(ctx context.Context, promptID int64, userID string, positive bool) (domainprompt.Counts, error) {
	if userID == "" {
		userID = domainprompt.AnonymousUser
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domainprompt.Counts{}, fmt.Errorf("beginning rating tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	upsert := `
		INSERT INTO prompt_ratings (prompt_id, user_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (prompt_id, user_id) DO UPDATE SET rating = EXCLUDED.rating`
	if _, err := tx.Exec(ctx, upsert, promptID, userID, positive); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domainprompt.Counts{}, fmt.Errorf("prompt %d: %w", promptID, domainprompt.ErrNotFound)
		}
		return domainprompt.Counts{}, fmt.Errorf("upserting rating: %w", err)
	}

	var c domainprompt.Counts
	recount := `
		SELECT COUNT(*) FILTER (WHERE rating), COUNT(*) FILTER (WHERE NOT rating)
		FROM prompt_ratings WHERE prompt_id = $1`
	if err := tx.QueryRow(ctx, recount, promptID).Scan(&c.Positive, &c.Negative); err != nil {
		return domainprompt.Counts{}, fmt.Errorf("recounting ratings: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE prompts SET positive_ratings = $2, negative_ratings = $3 WHERE id = $1`,
		promptID, c.Positive, c.Negative)
	if err != nil {
		return domainprompt.Counts{}, fmt.Errorf("updating rating counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainprompt.Counts{}, fmt.Errorf("prompt %d: %w", promptID, domainprompt.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return domainprompt.Counts{}, fmt.Errorf("committing rating tx: %w", err)
	}
	return c, nil
}

func (r *Repository) UserRatings(ctx context.Context, userID string) (map[int64]bool, error) {
	if userID == "" {
		userID = domainprompt.AnonymousUser
	}
	rows, err := r.pool.Query(ctx, `SELECT prompt_id, rating FROM prompt_ratings WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		var positive bool
		if err := rows.Scan(&id, &positive); err != nil {
			return nil, fmt.Errorf("scanning rating row: %w", err)
		}
		out[id] = positive
	}
	return out, rows.Err()
}
