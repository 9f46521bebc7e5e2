package app

import (
	"context"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/wholesale-toko/internal/common"
	"github.com/noah-isme/wholesale-toko/internal/config"
	"github.com/noah-isme/wholesale-toko/internal/obs"
	"github.com/noah-isme/wholesale-toko/internal/ratelimit"
	"github.com/noah-isme/wholesale-toko/internal/registration"
	"github.com/noah-isme/wholesale-toko/internal/resilience"
)

// Dependencies are the shared clients handed to every module.
type Dependencies struct {
	Redis           *redis.Client
	Validator       *validator.Validate
	LimiterStore    limiter.Store
	MetricsRegistry *prometheus.Registry
	HTTPMetrics     *obs.HTTPMetrics
}

// NewDependencies builds the shared clients from cfg. Redis is optional: with no REDIS_URL the
// catalog cache is disabled and rate limits are kept in process memory.
func NewDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if cfg.MetricsEnabled {
			if err := redisotel.InstrumentMetrics(client); err != nil {
				logger.Error().Err(err).Msg("instrument redis metrics")
			}
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.HealthRedisTimeout*4)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable at startup; catalog cache will miss")
		}
		deps.Redis = client
	}

	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	deps.Validator = v

	store, err := ratelimit.NewStore(deps.Redis)
	if err != nil {
		return nil, fmt.Errorf("rate limit store: %w", err)
	}
	deps.LimiterStore = store

	if cfg.MetricsEnabled {
		deps.MetricsRegistry = NewRegistry(cfg.MetricsNamespace)
		deps.HTTPMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBucketsMS), deps.MetricsRegistry)
	}
	return deps, nil
}

// NewValidator returns the request validator shared by the quote and registration modules.
func NewValidator() (*validator.Validate, error) {
	v := common.NewValidator()
	if err := registration.RegisterValidations(v); err != nil {
		return nil, fmt.Errorf("register validations: %w", err)
	}
	return v, nil
}

// NewRegistry creates a Prometheus registry carrying runtime and domain collectors.
func NewRegistry(namespace string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	obs.MustRegisterDomainMetrics(namespace, reg)
	resilience.MustRegisterMetrics(namespace, reg)
	return reg
}

// Close releases network clients.
func (d *Dependencies) Close() error {
	if d == nil || d.Redis == nil {
		return nil
	}
	return d.Redis.Close()
}
