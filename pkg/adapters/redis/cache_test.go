package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/launchtree/pkg/adapters/redis"
	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunResultCacheContract(t, redis.NewFromClient(client))
}

func TestRedisCache_New(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := redis.New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer cache.Close()
	ports.RunResultCacheContract(t, cache)

	_, err = redis.New("not a url")
	assert.Error(t, err)
}

func TestRedisCache_TTL(t *testing.T) {
	mr, client := newClient(t)
	cache := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", &domain.CacheEntry{Document: json.RawMessage(`{}`)}))
	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "k")

	mr.FastForward(2 * time.Second)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_Prefix(t *testing.T) {
	mr, client := newClient(t)
	cache := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "abc", &domain.CacheEntry{Document: json.RawMessage(`{}`)}))
	assert.True(t, mr.Exists("custom:app:abc"))
	assert.True(t, mr.Exists("custom:app:index"))

	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, keys)

	require.NoError(t, cache.Delete(ctx, "abc"))
	keys, err = cache.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	mr, client := newClient(t)
	cache := redis.NewFromClient(client)
	require.NoError(t, mr.Set("launchtree:cache:bad", "{not json"))

	_, err := cache.Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
}
