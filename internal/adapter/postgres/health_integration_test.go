//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/prompt-hub/internal/adapter/postgres"
	"github.com/alanyang/prompt-hub/internal/testutil"
)

func TestCheck_MigratedSchema(t *testing.T) {
	pool := testutil.SetupTestDB(t)

	h, err := postgres.Check(context.Background(), pool)
	require.NoError(t, err)
	for _, table := range postgres.Tables {
		assert.True(t, h.Tables[table], table)
	}
	assert.True(t, h.WritesAllowed, h.WriteError)

	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM prompts WHERE slug = 'test-prompt-rls-check'`).Scan(&n))
	assert.Zero(t, n, "probe row must be rolled back")
}
