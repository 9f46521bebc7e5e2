package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string
	CurrencyCode       string

	MinimumOrderThreshold decimal.Decimal

	CatalogCacheTTL     time.Duration
	CatalogDefaultLimit int
	CatalogMaxLimit     int

	CreditApproved  bool
	CreditLimit     decimal.Decimal
	CreditAvailable decimal.Decimal
	CreditDays      int

	QuoteRateLimitPerMinute int
	MaxBodyBytes            int64
	SecurityHeadersEnabled  bool
	HSTSEnabled             bool

	LogFormat string
	LogLevel  string

	ServiceName       string
	ServiceVersion    string
	TracingEnabled    bool
	OTelExporter      string
	OTelEndpoint      string
	OTelSamplingRatio float64

	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBucketsMS string

	PprofEnabled bool
	PprofUser    string
	PprofPass    string

	HealthRedisTimeout time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	threshold, err := parseDecimal(k.String("MINIMUM_ORDER_THRESHOLD"), "10000")
	if err != nil {
		return nil, fmt.Errorf("MINIMUM_ORDER_THRESHOLD: %w", err)
	}
	creditLimit, err := parseDecimal(k.String("CREDIT_LIMIT"), "500000")
	if err != nil {
		return nil, fmt.Errorf("CREDIT_LIMIT: %w", err)
	}
	creditAvailable, err := parseDecimal(k.String("CREDIT_AVAILABLE"), "450000")
	if err != nil {
		return nil, fmt.Errorf("CREDIT_AVAILABLE: %w", err)
	}

	cfg := &Config{
		AppEnv:                  valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                    valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:                strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins:      splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CurrencyCode:            strings.ToUpper(valueOrDefault(k.String("CURRENCY_CODE"), "INR")),
		MinimumOrderThreshold:   threshold,
		CatalogCacheTTL:         parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CatalogDefaultLimit:     parseInt(k.String("CATALOG_DEFAULT_LIMIT"), 20),
		CatalogMaxLimit:         parseInt(k.String("CATALOG_MAX_LIMIT"), 100),
		CreditApproved:          parseBoolDefault(k.String("CREDIT_APPROVED"), true),
		CreditLimit:             creditLimit,
		CreditAvailable:         creditAvailable,
		CreditDays:              parseInt(k.String("CREDIT_DAYS"), 30),
		QuoteRateLimitPerMinute: parseInt(k.String("RATE_LIMIT_QUOTES_PER_MINUTE"), 120),
		MaxBodyBytes:            int64(parseInt(k.String("HTTP_MAX_BODY_BYTES"), 1<<20)),
		SecurityHeadersEnabled:  parseBoolDefault(k.String("SECURITY_HEADERS_ENABLED"), true),
		HSTSEnabled:             parseBool(k.String("SECURITY_HSTS_ENABLED")),
		LogFormat:               strings.ToLower(valueOrDefault(k.String("LOG_FORMAT"), "json")),
		LogLevel:                strings.ToLower(valueOrDefault(k.String("LOG_LEVEL"), "info")),
		ServiceName:             valueOrDefault(k.String("OTEL_SERVICE_NAME"), "wholesale-toko"),
		ServiceVersion:          strings.TrimSpace(k.String("OTEL_SERVICE_VERSION")),
		TracingEnabled:          parseBool(k.String("OTEL_ENABLED")),
		OTelExporter:            strings.ToLower(valueOrDefault(k.String("OTEL_TRACES_EXPORTER"), "otlp")),
		OTelEndpoint:            strings.TrimSpace(k.String("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTelSamplingRatio:       parseFloat(k.String("OTEL_TRACES_SAMPLER_ARG"), 1),
		MetricsEnabled:          parseBoolDefault(k.String("OBS_METRICS_ENABLED"), true),
		MetricsNamespace:        valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "wholesale"),
		MetricsBucketsMS:        strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
		PprofEnabled:            parseBool(k.String("OBS_ENABLE_PPROF")),
		PprofUser:               strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
		PprofPass:               strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),
		HealthRedisTimeout:      parseDuration(k.String("HEALTH_REDIS_TIMEOUT"), "500ms"),
		ShutdownTimeout:         parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),
	}

	if !cfg.MinimumOrderThreshold.IsPositive() {
		return nil, fmt.Errorf("MINIMUM_ORDER_THRESHOLD must be positive")
	}
	if cfg.CreditAvailable.GreaterThan(cfg.CreditLimit) {
		return nil, fmt.Errorf("CREDIT_AVAILABLE must not exceed CREDIT_LIMIT")
	}
	if cfg.CatalogMaxLimit < cfg.CatalogDefaultLimit {
		cfg.CatalogMaxLimit = cfg.CatalogDefaultLimit
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseDecimal(value, fallback string) (decimal.Decimal, error) {
	return decimal.NewFromString(valueOrDefault(value, fallback))
}

func parseInt(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || v <= 0 || v > 1 {
		return fallback
	}
	return v
}

func parseBool(value string) bool {
	return parseBoolDefault(value, false)
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
