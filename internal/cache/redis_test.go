package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, 10*time.Minute), mr
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	products := []domain.Product{
		{ID: primitive.NewObjectID(), Title: "Brown Hat", Price: 25, ImageURL: "u", Category: "hats"},
	}

	require.NoError(t, c.Set(ctx, products))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, got)

	ttl := mr.TTL(catalogKey)
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 15*time.Minute)
}

func TestSet_ExpiresAfterTTL(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []domain.Product{}))
	mr.FastForward(20 * time.Minute)

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidate(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []domain.Product{}))
	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists(catalogKey))

	// deleting a missing key is fine
	require.NoError(t, c.Invalidate(ctx))
}

func TestGet_CorruptData(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(catalogKey, "not json"))

	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestGet_RedisDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
