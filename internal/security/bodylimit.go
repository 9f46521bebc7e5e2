package security

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/noah-isme/wholesale-toko/internal/common"
)

var errBodyTooLarge = errors.New("request body too large")

// BodyLimit caps request payloads at Max bytes. The body is buffered before
// the handler runs, so decoders never see a truncated document.
type BodyLimit struct {
	Max int64
}

// Middleware rejects oversized bodies with 413. A non-positive Max disables it.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	if b.Max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !carriesBody(r) {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			b.reject(w)
			return
		}

		body, err := readCapped(r.Body, b.Max)
		switch {
		case errors.Is(err, errBodyTooLarge):
			b.reject(w)
			return
		case err != nil:
			common.WriteError(w, common.NewError(http.StatusBadRequest, common.CodeBadRequest, "invalid request body", err))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

func (b BodyLimit) reject(w http.ResponseWriter) {
	common.WriteError(w, common.NewError(http.StatusRequestEntityTooLarge, common.CodePayloadTooLarge, "request entity too large", errBodyTooLarge).
		WithDetails(map[string]any{"maxBytes": b.Max}))
}

func carriesBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody {
		return false
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func readCapped(rc io.ReadCloser, limit int64) ([]byte, error) {
	defer rc.Close()
	buf, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > limit {
		return nil, errBodyTooLarge
	}
	return buf, nil
}
