//go:build integration

package rating_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgrating "github.com/alanyang/prompt-hub/internal/adapter/postgres/rating"
	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/testutil"
)

func TestRating_ResolveID(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgrating.New(pool)
	slug := "rate-" + uuid.NewString()[:8]
	id := testutil.InsertPrompt(t, pool, slug, "en", "T")

	got, ok, err := repo.ResolveID(ctx, slug)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	got, ok, err = repo.ResolveID(ctx, strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok, err = repo.ResolveID(ctx, "custom-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok, "custom prompts are local only")

	_, ok, err = repo.ResolveID(ctx, "no-such-slug-"+uuid.NewString())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRating_VoteRecountsFromRows(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgrating.New(pool)
	id := testutil.InsertPrompt(t, pool, "rate-"+uuid.NewString()[:8], "en", "T")

	c, err := repo.Vote(ctx, id, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, domainprompt.Counts{Positive: 1}, c)

	c, err = repo.Vote(ctx, id, "", true)
	require.NoError(t, err)
	assert.Equal(t, domainprompt.Counts{Positive: 2}, c)

	// Switching updates the existing row instead of adding one.
	c, err = repo.Vote(ctx, id, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, domainprompt.Counts{Positive: 1, Negative: 1}, c)

	var pos, neg int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT positive_ratings, negative_ratings FROM prompts WHERE id = $1`, id).Scan(&pos, &neg))
	assert.Equal(t, 1, pos)
	assert.Equal(t, 1, neg)

	ratings, err := repo.UserRatings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, false, ratings[id])

	anon, err := repo.UserRatings(ctx, domainprompt.AnonymousUser)
	require.NoError(t, err)
	assert.Equal(t, true, anon[id])
}

func TestRating_VoteUnknownPrompt(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	_, err := pgrating.New(pool).Vote(context.Background(), -1, "alice", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainprompt.ErrNotFound)
}
