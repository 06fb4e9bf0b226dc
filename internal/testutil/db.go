//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-hub/internal/adapter/postgres"
)

// SetupTestDB connects to the test database and applies the embedded migrations.
// It skips the test if TEST_DATABASE_URL is not set. Every call shares one
// database, so callers scope their rows by unique slugs.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	if err := postgres.Migrate(url, true); err != nil {
		t.Fatalf("migrate test DB: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, url, postgres.PoolOptions{MaxConns: 8})
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

// InsertPrompt writes a prompt row and, when title is non-empty, its translation.
func InsertPrompt(t *testing.T, pool *pgxpool.Pool, slug, language, title string) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO prompts (slug, category, tags) VALUES ($1, 'Testing', ARRAY['it']) RETURNING id`,
		slug).Scan(&id)
	if err != nil {
		t.Fatalf("insert prompt %s: %v", slug, err)
	}
	if title != "" {
		_, err = pool.Exec(ctx,
			`INSERT INTO prompt_translations (prompt_id, language, title, description, content)
			 VALUES ($1, $2, $3, 'desc', 'Hello {name}')`, id, language, title)
		if err != nil {
			t.Fatalf("insert translation %s: %v", slug, err)
		}
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM prompts WHERE id = $1`, id) //nolint:errcheck
	})
	return id
}
