package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wholesale-toko/internal/resilience"
)

func TestCacheBreakerSkipsUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	breaker := resilience.NewBreaker("catalog_cache", 2, 0.5, time.Minute)
	cache := NewCache(client, time.Minute).WithBreaker(breaker)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", []string{"a"}))
	var got []string
	found, err := cache.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []string{"a"}, got)

	mr.Close()
	_, err = cache.GetJSON(ctx, "k", &got)
	require.Error(t, err)
	_, err = cache.GetJSON(ctx, "k", &got)
	require.Error(t, err)
	require.Equal(t, resilience.Open, breaker.State())

	found, err = cache.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, cache.SetJSON(ctx, "k", []string{"b"}))
}

func TestCacheMissDoesNotTripBreaker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	breaker := resilience.NewBreaker("catalog_cache_miss", 1, 0.5, time.Minute)
	cache := NewCache(client, time.Minute).WithBreaker(breaker)

	var got map[string]any
	for i := 0; i < 5; i++ {
		found, err := cache.GetJSON(context.Background(), "absent", &got)
		require.NoError(t, err)
		require.False(t, found)
	}
	require.Equal(t, resilience.Closed, breaker.State())
}
