package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wholesale-toko/internal/health"
)

type stubChecker struct {
	catalogErr error
	redisErr   error
}

func (s stubChecker) PingCatalog(context.Context) error              { return s.catalogErr }
func (s stubChecker) PingRedis(context.Context, time.Duration) error { return s.redisErr }

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	health.Handler{}.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestReadyReportsEachDependency(t *testing.T) {
	cases := []struct {
		name    string
		checker stubChecker
		code    int
		want    map[string]string
	}{
		{"healthy", stubChecker{}, http.StatusOK, map[string]string{"catalog": "ok", "redis": "ok"}},
		{"redis down", stubChecker{redisErr: errors.New("redis down")}, http.StatusServiceUnavailable,
			map[string]string{"catalog": "ok", "redis": "redis down"}},
		{"catalog missing", stubChecker{catalogErr: errors.New("catalog not loaded")}, http.StatusServiceUnavailable,
			map[string]string{"catalog": "catalog not loaded", "redis": "ok"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			health.Handler{Checker: tc.checker, RedisTimeout: 50 * time.Millisecond}.
				Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			require.Equal(t, tc.code, rec.Code)
			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDependenciesProbeRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	deps := health.Dependencies{Redis: client, Catalog: func(context.Context) error { return nil }}
	require.NoError(t, deps.PingRedis(context.Background(), time.Second))
	require.NoError(t, deps.PingCatalog(context.Background()))

	mr.Close()
	require.Error(t, deps.PingRedis(context.Background(), 100*time.Millisecond))

	require.NoError(t, health.Dependencies{}.PingRedis(context.Background(), time.Second), "redis is optional")
	require.Error(t, health.Dependencies{}.PingCatalog(context.Background()))
}
