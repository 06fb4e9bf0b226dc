//go:build integration

package seed_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgcatalog "github.com/alanyang/prompt-hub/internal/adapter/postgres/catalog"
	pglocker "github.com/alanyang/prompt-hub/internal/adapter/postgres/locker"
	"github.com/alanyang/prompt-hub/internal/adapter/postgres/seed"
	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/testutil"
)

func TestSeed_CreatesThenUpdates(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	s := seed.New(pool, pglocker.New(pool))

	slug := "seed-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM prompts WHERE slug = $1`, slug) //nolint:errcheck
	})
	in := []domainprompt.Prompt{{
		ID: slug, Title: "First", Category: "Research", Content: "About {topic}",
		Variables: []domainprompt.Variable{{ID: "topic", Name: "Topic", Type: domainprompt.KindText}},
		Tags:      []string{"seed"},
	}}

	res, err := s.Seed(ctx, in, "en")
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Created: 1, Translations: 1}, res)

	in[0].Title = "Second"
	res, err = s.Seed(ctx, in, "en")
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Updated: 1, Translations: 1}, res)

	prompts, err := pgcatalog.New(pool).Load(ctx, "en")
	require.NoError(t, err)
	var found *domainprompt.Prompt
	for i := range prompts {
		if prompts[i].Slug == slug {
			found = &prompts[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Second", found.Title)
	assert.Equal(t, "topic", found.Variables[0].ID)
}

func TestSeed_RejectsMissingID(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	_, err := seed.New(pool, pglocker.New(pool)).Seed(context.Background(), []domainprompt.Prompt{{Title: "x"}}, "en")
	assert.ErrorIs(t, err, domainprompt.ErrInvalidInput)
}
