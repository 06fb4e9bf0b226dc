package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables lists the tables the catalog and ratings depend on.
var Tables = []string{"prompts", "prompt_translations", "prompt_ratings"}

type Health struct {
	Tables        map[string]bool `json:"tables"`
	WritesAllowed bool            `json:"writes_allowed"`
	WriteError    string          `json:"write_error,omitempty"`
}

// Check reports which tables exist and whether row-level security lets this
// role insert prompts. The probe insert is always rolled back.
func Check(ctx context.Context, pool *pgxpool.Pool) (Health, error) {
	h := Health{Tables: make(map[string]bool, len(Tables))}
	for _, table := range Tables {
		var exists bool
		if err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table).Scan(&exists); err != nil {
			return h, fmt.Errorf("checking table %s: %w", table, err)
		}
		h.Tables[table] = exists
	}
	if !h.Tables["prompts"] {
		return h, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return h, fmt.Errorf("beginning probe tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `INSERT INTO prompts (slug, category) VALUES ('test-prompt-rls-check', 'test')`)
	if err != nil {
		h.WriteError = err.Error()
		return h, nil
	}
	h.WritesAllowed = true
	return h, nil
}
