package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portcache "github.com/alanyang/prompt-hub/internal/port/cache"
)

func TestCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, portcache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Invalidate(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, portcache.ErrNotFound)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(59 * time.Second)
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, portcache.ErrNotFound)
}
