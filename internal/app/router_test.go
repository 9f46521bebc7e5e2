package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wholesale-toko/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                  "test",
		CurrencyCode:            "INR",
		MinimumOrderThreshold:   decimal.NewFromInt(10000),
		CatalogCacheTTL:         time.Minute,
		CatalogDefaultLimit:     20,
		CatalogMaxLimit:         100,
		CreditApproved:          true,
		CreditLimit:             decimal.NewFromInt(500000),
		CreditAvailable:         decimal.NewFromInt(450000),
		CreditDays:              30,
		QuoteRateLimitPerMinute: 100,
		MaxBodyBytes:            1 << 20,
		SecurityHeadersEnabled:  true,
		MetricsEnabled:          true,
		MetricsNamespace:        "wholesale",
		HealthRedisTimeout:      200 * time.Millisecond,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (http.Handler, *Dependencies) {
	t.Helper()
	deps, err := NewDependencies(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })
	router, err := NewRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	return router, deps
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const riceQuote = `{"items":[{"productId":"basmati-rice-premium","quantity":100}],"deliverySlot":"morning","promoCode":"bulk10"}`

func TestRouterServesPricingFlowWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	router, deps := newTestServer(t, cfg)
	require.NotNil(t, deps.Redis)

	rec := do(router, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"catalog":"ok","redis":"ok"}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/v1/products?bulkDiscount=true&sort=bulk_savings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Total-Count"))
	require.NotEmpty(t, mr.Keys())

	rec = do(router, http.MethodPost, "/api/v1/quotes", riceQuote)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))

	var resp struct {
		Data struct {
			Totals struct {
				GrandTotal           decimal.Decimal `json:"grandTotal"`
				QualifiesForCheckout bool            `json:"qualifiesForCheckout"`
			} `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// 100 * 105.6 = 10560, tax 528, less 1000
	require.True(t, resp.Data.Totals.GrandTotal.Equal(decimal.NewFromInt(10088)), resp.Data.Totals.GrandTotal.String())
	require.True(t, resp.Data.Totals.QualifiesForCheckout)

	rec = do(router, http.MethodGet, "/api/v1/delivery/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "next_day")

	rec = do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `wholesale_http_requests_total{method="POST",route="/api/v1/quotes",status="200"} 1`)
}

func TestRouterWithoutRedis(t *testing.T) {
	router, deps := newTestServer(t, testConfig())
	require.Nil(t, deps.Redis)

	rec := do(router, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/products/turmeric-powder-1kg/price?qty=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"canAddToCart":true`)

	rec = do(router, http.MethodPost, "/api/v1/registration/steps/contact", `{"contactPersonName":"A","designation":"Owner","mobileNumber":"12345","email":"x@example.com","alternateNumber":"9876543210"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "mobileNumber")

	rec = do(router, http.MethodGet, "/api/v1/checkout/credit-terms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"approved":true`)
}

func TestRouterRateLimitsPricing(t *testing.T) {
	cfg := testConfig()
	cfg.QuoteRateLimitPerMinute = 2
	router, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		rec := do(router, http.MethodPost, "/api/v1/quotes", riceQuote)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(router, http.MethodPost, "/api/v1/quotes", riceQuote)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "RATE_LIMITED")

	// catalog reads are not limited
	rec = do(router, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 32
	router, _ := newTestServer(t, cfg)

	rec := do(router, http.MethodPost, "/api/v1/quotes", riceQuote)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Contains(t, rec.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestPprofRequiresBasicAuth(t *testing.T) {
	cfg := testConfig()
	cfg.PprofEnabled = true
	cfg.PprofUser = "ops"
	cfg.PprofPass = "secret"
	router, _ := newTestServer(t, cfg)

	rec := do(router, http.MethodGet, "/debug/pprof/", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("ops", "secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
