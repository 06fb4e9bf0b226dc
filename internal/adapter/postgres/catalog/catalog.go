package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	portcatalog "github.com/alanyang/prompt-hub/internal/port/catalog"
)

var _ portcatalog.Source = (*Source)(nil)

// Source loads catalog templates from the prompts/prompt_translations join.
// [LSP] Any conforming catalog.Source (static file, embedded default) can substitute.
type Source struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

// Load returns every prompt translated into language, ordered by row id.
// Prompts without a translation in that language are skipped.
func (s *Source) Load(ctx context.Context, language string) ([]domainprompt.Prompt, error) {
	query := `
		SELECT p.id, p.slug, p.category, p.created_at, p.variables, p.tags,
		       p.positive_ratings, p.negative_ratings,
		       t.title, t.description, t.content
		FROM prompts p
		LEFT JOIN prompt_translations t
			ON t.prompt_id = p.id AND t.language = $1
		ORDER BY p.id`

	rows, err := s.pool.Query(ctx, query, language)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	prompts := []domainprompt.Prompt{}
	for rows.Next() {
		var (
			id                       int64
			slug, category           string
			createdAt                time.Time
			variables                []byte
			tags                     []string
			positive, negative       int
			title, description, body *string
		)
		if err := rows.Scan(&id, &slug, &category, &createdAt, &variables, &tags,
			&positive, &negative, &title, &description, &body); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if title == nil {
			slog.WarnContext(ctx, "catalog: no translation for prompt", "prompt_id", id, "language", language)
			continue
		}

		vars := []domainprompt.Variable{}
		if len(variables) > 0 {
			if err := json.Unmarshal(variables, &vars); err != nil {
				return nil, fmt.Errorf("decoding variables of prompt %d: %w", id, err)
			}
		}
		if tags == nil {
			tags = []string{}
		}

		prompts = append(prompts, domainprompt.Prompt{
			ID:              strconv.FormatInt(id, 10),
			Slug:            slug,
			Title:           *title,
			Category:        category,
			Description:     deref(description),
			Content:         deref(body),
			Variables:       vars,
			Tags:            tags,
			CreatedAt:       domainprompt.Timestamp(createdAt),
			Type:            domainprompt.TypeSystemTemplate,
			PositiveRatings: positive,
			NegativeRatings: negative,
		})
	}
	return prompts, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
