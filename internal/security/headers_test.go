package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func respond(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

func TestHeadersSetOverTLS(t *testing.T) {
	handler := Headers{Enable: true, EnableHSTS: true, HSTSIncludeSubdomains: true}.Middleware(respond(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "https://wholesale.example/api/v1/products", nil)
	req.TLS = &tls.ConnectionState{}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, apiContentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
	require.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://wholesale.example/api/v1/products", nil))
	require.Empty(t, rec.Header().Get("Strict-Transport-Security"), "plain HTTP never gets HSTS")
}

func TestHeadersDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	Headers{EnableHSTS: true}.Middleware(respond(http.StatusOK)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Empty(t, rec.Header().Get("X-Content-Type-Options"))
}

func TestHeadersCacheControl(t *testing.T) {
	h := Headers{
		Enable:          true,
		NoStorePrefixes: []string{"/api/v1/quotes", "/api/v1/checkout"},
		PublicPrefixes:  []string{"/api/v1/products"},
		PublicMaxAge:    90 * time.Second,
	}
	cases := []struct {
		name   string
		method string
		path   string
		status int
		want   string
	}{
		{"checkout review", http.MethodPost, "/api/v1/checkout/review", http.StatusOK, "no-store"},
		{"failed quote", http.MethodPost, "/api/v1/quotes", http.StatusUnprocessableEntity, "no-store"},
		{"product list", http.MethodGet, "/api/v1/products", http.StatusOK, "public, max-age=90"},
		{"missing product", http.MethodGet, "/api/v1/products/nope", http.StatusNotFound, ""},
		{"unlisted path", http.MethodGet, "/api/v1/brands", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Middleware(respond(tc.status)).ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.want, rec.Header().Get("Cache-Control"))
		})
	}
}
