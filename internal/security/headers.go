package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// Headers configures common security headers for HTTP responses.
type Headers struct {
	Enable                bool
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	// NoStorePrefixes lists path prefixes whose responses must not be cached.
	// Quotes and checkout reviews are buyer specific.
	NoStorePrefixes []string
	// PublicPrefixes are catalog reads that shared caches may keep for
	// PublicMaxAge. Only successful GET responses are marked.
	PublicPrefixes []string
	PublicMaxAge   time.Duration
}

// Middleware attaches standard security headers to each response.
func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Enable {
			next.ServeHTTP(w, r)
			return
		}
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Content-Security-Policy", apiContentSecurityPolicy)
		headers.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if hasPrefix(r.URL.Path, h.NoStorePrefixes) {
			headers.Set("Cache-Control", "no-store")
		} else if r.Method == http.MethodGet && h.PublicMaxAge > 0 && hasPrefix(r.URL.Path, h.PublicPrefixes) {
			w = &publicCacheWriter{ResponseWriter: w, value: "public, max-age=" + strconv.Itoa(int(h.PublicMaxAge.Seconds()))}
		}
		if h.EnableHSTS && r.TLS != nil {
			maxAge := h.HSTSMaxAge
			if maxAge <= 0 {
				maxAge = 31536000
			}
			value := "max-age=" + strconv.Itoa(maxAge)
			if h.HSTSIncludeSubdomains {
				value += "; includeSubDomains"
			}
			headers.Set("Strict-Transport-Security", value)
		}
		next.ServeHTTP(w, r)
	})
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// publicCacheWriter marks the response cacheable once the status is known.
type publicCacheWriter struct {
	http.ResponseWriter
	value       string
	wroteHeader bool
}

func (p *publicCacheWriter) WriteHeader(status int) {
	if !p.wroteHeader {
		p.wroteHeader = true
		if status < http.StatusBadRequest && p.Header().Get("Cache-Control") == "" {
			p.Header().Set("Cache-Control", p.value)
		}
	}
	p.ResponseWriter.WriteHeader(status)
}

func (p *publicCacheWriter) Write(b []byte) (int, error) {
	if !p.wroteHeader {
		p.WriteHeader(http.StatusOK)
	}
	return p.ResponseWriter.Write(b)
}

func (p *publicCacheWriter) Unwrap() http.ResponseWriter { return p.ResponseWriter }
