package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portcache "github.com/alanyang/prompt-hub/internal/port/cache"
)

func setupMockRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestCache_RoundTripWithPrefix(t *testing.T) {
	mr, client := setupMockRedis(t)
	ctx := context.Background()
	c := New(client, "prompthub:")

	_, err := c.Get(ctx, "catalog:en")
	assert.ErrorIs(t, err, portcache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "catalog:en", []byte(`[]`), time.Minute))
	assert.True(t, mr.Exists("prompthub:catalog:en"))

	got, err := c.Get(ctx, "catalog:en")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, c.Invalidate(ctx, "catalog:en"))
	assert.False(t, mr.Exists("prompthub:catalog:en"))
}

func TestCache_TTL(t *testing.T) {
	mr, client := setupMockRedis(t)
	ctx := context.Background()
	c := New(client, "")

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, portcache.ErrNotFound)
}

func TestConnect(t *testing.T) {
	mr, _ := setupMockRedis(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = Connect(context.Background(), "://bad")
	assert.Error(t, err)
}
