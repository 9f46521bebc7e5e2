package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "ratelimit"

// NewStore returns a Redis-backed store when client is set, an in-process store otherwise.
func NewStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix, CleanUpInterval: time.Minute}), nil
	}
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: keyPrefix, MaxRetry: 3})
}

// Limiter counts events per key over a fixed window.
type Limiter struct {
	lim *limiter.Limiter
}

// NewLimiter allows max events per window for each key.
func NewLimiter(store limiter.Store, window time.Duration, max int) *Limiter {
	return &Limiter{lim: limiter.New(store, limiter.Rate{Period: window, Limit: int64(max)})}
}

// Allow registers an event for the given key and returns whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, limit, remaining int, reset time.Time, err error) {
	res, err := l.lim.Get(ctx, key)
	if err != nil {
		return false, 0, 0, time.Time{}, err
	}
	return !res.Reached, int(res.Limit), int(res.Remaining), time.Unix(res.Reset, 0), nil
}
