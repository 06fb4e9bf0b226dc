package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	portlocker "github.com/alanyang/prompt-hub/internal/port/locker"
)

// lockKey serialises concurrent seed runs across processes.
const lockKey int64 = 0x70726f6d707473 // "prompts"

type Result struct {
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Translations int `json:"translations"`
}

// Seeder writes catalog files into the prompts and prompt_translations tables.
type Seeder struct {
	pool   *pgxpool.Pool
	locker portlocker.AdvisoryLocker
}

func New(pool *pgxpool.Pool, locker portlocker.AdvisoryLocker) *Seeder {
	return &Seeder{pool: pool, locker: locker}
}

// Seed upserts one prompt row per entry, keyed by slug, and its translation in
// language. The source id becomes the slug when no slug is set.
func (s *Seeder) Seed(ctx context.Context, prompts []domainprompt.Prompt, language string) (Result, error) {
	var res Result
	err := s.locker.WithLock(ctx, lockKey, func(ctx context.Context) error {
		var err error
		res, err = s.seed(ctx, prompts, language)
		return err
	})
	return res, err
}

func (s *Seeder) seed(ctx context.Context, prompts []domainprompt.Prompt, language string) (Result, error) {
	var res Result

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("beginning seed tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	upsertPrompt := `
		INSERT INTO prompts (slug, category, variables, tags, is_custom)
		VALUES ($1, $2, $3, $4, false)
		ON CONFLICT (slug) DO UPDATE
			SET category = EXCLUDED.category, variables = EXCLUDED.variables, tags = EXCLUDED.tags
		RETURNING id, (xmax = 0)`
	upsertTranslation := `
		INSERT INTO prompt_translations (prompt_id, language, title, description, content)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (prompt_id, language) DO UPDATE
			SET title = EXCLUDED.title, description = EXCLUDED.description, content = EXCLUDED.content`

	for _, p := range prompts {
		slug := p.Slug
		if slug == "" {
			slug = p.ID
		}
		if slug == "" {
			return res, fmt.Errorf("seeding %q: %w: missing id", p.Title, domainprompt.ErrInvalidInput)
		}

		vars := p.Variables
		if vars == nil {
			vars = []domainprompt.Variable{}
		}
		varsJSON, err := json.Marshal(vars)
		if err != nil {
			return res, fmt.Errorf("encoding variables of %s: %w", slug, err)
		}
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}

		var id int64
		var inserted bool
		if err := tx.QueryRow(ctx, upsertPrompt, slug, p.Category, varsJSON, tags).Scan(&id, &inserted); err != nil {
			return res, fmt.Errorf("upserting prompt %s: %w", slug, err)
		}
		if inserted {
			res.Created++
		} else {
			res.Updated++
		}

		if _, err := tx.Exec(ctx, upsertTranslation, id, language, p.Title, p.Description, p.Content); err != nil {
			return res, fmt.Errorf("upserting translation for %s: %w", slug, err)
		}
		res.Translations++
		slog.DebugContext(ctx, "seed: prompt written", "slug", slug, "id", id, "created", inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("committing seed tx: %w", err)
	}
	return res, nil
}
