package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/wholesale-toko/internal/catalog"
	"github.com/noah-isme/wholesale-toko/internal/checkout"
	"github.com/noah-isme/wholesale-toko/internal/config"
	"github.com/noah-isme/wholesale-toko/internal/delivery"
	"github.com/noah-isme/wholesale-toko/internal/health"
	"github.com/noah-isme/wholesale-toko/internal/obs"
	"github.com/noah-isme/wholesale-toko/internal/promo"
	"github.com/noah-isme/wholesale-toko/internal/quote"
	"github.com/noah-isme/wholesale-toko/internal/ratelimit"
	"github.com/noah-isme/wholesale-toko/internal/registration"
	"github.com/noah-isme/wholesale-toko/internal/resilience"
	"github.com/noah-isme/wholesale-toko/internal/security"
)

// NewRouter wires every module onto a chi router.
func NewRouter(cfg *config.Config, deps *Dependencies, logger zerolog.Logger) (http.Handler, error) {
	if cfg == nil || deps == nil {
		return nil, errors.New("app: config and dependencies are required")
	}

	store, err := catalog.LoadSeed()
	if err != nil {
		return nil, err
	}
	catalogLogger := logger.With().Str("module", "catalog").Logger()
	cacheBreaker := resilience.NewBreaker("catalog_cache", 5, 0.5, 30*time.Second).WithLogger(catalogLogger)
	cache := catalog.NewCache(deps.Redis, cfg.CatalogCacheTTL).WithBreaker(cacheBreaker)
	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:        store,
		Cache:        cache,
		Logger:       &catalogLogger,
		DefaultLimit: cfg.CatalogDefaultLimit,
		MaxLimit:     cfg.CatalogMaxLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise catalog service: %w", err)
	}

	slots := delivery.NewCatalog(delivery.DefaultSlots())
	promoService := &promo.Service{Store: promo.NewMemoryStore(promo.DefaultRules())}
	quoteService, err := quote.NewService(quote.Config{
		Products:              catalogService,
		Promos:                promoService,
		Slots:                 slots,
		Validator:             deps.Validator,
		MinimumOrderThreshold: cfg.MinimumOrderThreshold,
		Currency:              cfg.CurrencyCode,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise quote service: %w", err)
	}
	checkoutService := &checkout.Service{
		Quotes: quoteService,
		Flow: checkout.Flow{Terms: checkout.CreditTerms{
			Approved:  cfg.CreditApproved,
			Limit:     cfg.CreditLimit,
			Available: cfg.CreditAvailable,
			Days:      cfg.CreditDays,
		}},
	}
	registrationValidator, err := registration.NewValidator(deps.Validator)
	if err != nil {
		return nil, err
	}

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService})
	deliveryHandler := &delivery.Handler{Catalog: slots}
	promoHandler := &promo.Handler{Service: promoService}
	quoteHandler := &quote.Handler{Service: quoteService}
	checkoutHandler := &checkout.Handler{Svc: checkoutService}
	registrationHandler := &registration.Handler{Validator: registrationValidator}

	pricingLimit := ratelimit.Handler{
		Limiter: ratelimit.NewLimiter(deps.LimiterStore, time.Minute, cfg.QuoteRateLimitPerMinute),
		Key:     ratelimit.ClientKey("pricing"),
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}
	registrationLimit := pricingLimit
	registrationLimit.Key = ratelimit.ClientKey("registration")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if deps.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: deps.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger, Quiet: []string{"/health/", "/metrics"}}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", obs.BuyerHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{
		Enable:          cfg.SecurityHeadersEnabled,
		EnableHSTS:      cfg.HSTSEnabled,
		NoStorePrefixes: []string{"/api/v1/quotes", "/api/v1/pricing", "/api/v1/checkout", "/api/v1/registration", "/api/v1/promos"},
		PublicPrefixes:  []string{"/api/v1/products", "/api/v1/categories", "/api/v1/brands", "/api/v1/delivery/slots"},
		PublicMaxAge:    time.Minute,
	}.Middleware)

	if deps.MetricsRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{Registry: deps.MetricsRegistry}))
	}
	if cfg.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), cfg.PprofUser, cfg.PprofPass))
	}

	healthHandler := health.Handler{
		Checker: health.Dependencies{
			Redis: deps.Redis,
			Catalog: func(ctx context.Context) error {
				products, err := store.ListProducts(ctx)
				if err != nil {
					return err
				}
				if len(products) == 0 {
					return errors.New("catalog empty")
				}
				return nil
			},
		},
		RedisTimeout: cfg.HealthRedisTimeout,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)

		catalogHandler.Routes(v)
		deliveryHandler.Routes(v)

		v.Group(func(g chi.Router) {
			g.Use(pricingLimit.Middleware)
			quoteHandler.Routes(g)
			promoHandler.Routes(g)
			checkoutHandler.Routes(g)
		})
		v.Group(func(g chi.Router) {
			g.Use(registrationLimit.Middleware)
			registrationHandler.Routes(g)
		})
	})

	return r, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
