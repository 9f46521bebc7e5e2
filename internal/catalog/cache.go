package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/wholesale-toko/internal/obs"
	"github.com/noah-isme/wholesale-toko/internal/resilience"
)

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *resilience.Breaker
}

// NewCache constructs a cache helper. A nil client yields a disabled cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// WithBreaker skips Redis while b is open so an unreachable cache does not add latency to
// every listing.
func (c *Cache) WithBreaker(b *resilience.Breaker) *Cache {
	c.breaker = b
	return c
}

// Enabled reports whether lookups reach Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() || key == "" {
		return false, nil
	}
	if !c.breaker.Allow(ctx) {
		countCache("bypass")
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	c.breaker.Report(ctx, err == nil || errors.Is(err, redis.Nil))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			countCache("miss")
			return false, nil
		}
		countCache("error")
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		countCache("error")
		return false, err
	}
	countCache("hit")
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.Enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !c.breaker.Allow(ctx) {
		return nil
	}
	err = c.client.Set(ctx, key, data, c.ttl).Err()
	c.breaker.Report(ctx, err == nil)
	return err
}

func countCache(result string) {
	if obs.CatalogCacheTotal == nil {
		return
	}
	obs.CatalogCacheTotal.WithLabelValues(result).Inc()
}
