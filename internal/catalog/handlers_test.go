package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wholesale-toko/internal/catalog"
)

type productsResponse struct {
	Data       []catalog.Product `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

type errorResponse struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newCatalogRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := catalog.LoadSeed()
	require.NoError(t, err)
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: store, DefaultLimit: 20, MaxLimit: 100})
	require.NoError(t, err)
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: svc})
	r := chi.NewRouter()
	r.Route("/api/v1", handler.Routes)
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestCatalogHandlers(t *testing.T) {
	router := newCatalogRouter(t)

	t.Run("brands and categories", func(t *testing.T) {
		rec := get(t, router, "/api/v1/brands")
		require.Equal(t, http.StatusOK, rec.Code)
		var br struct {
			Data []catalog.Brand `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &br))
		require.Len(t, br.Data, 11)

		rec = get(t, router, "/api/v1/categories")
		require.Equal(t, http.StatusOK, rec.Code)
		var cat struct {
			Data []catalog.Category `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
		require.Len(t, cat.Data, 8)
		require.Equal(t, "grains", cat.Data[0].ID)
		require.NotEmpty(t, cat.Data[0].Subcategories)
	})

	t.Run("products list", func(t *testing.T) {
		rec := get(t, router, "/api/v1/products?category=grains&limit=2&sort=price_low_high")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "3", rec.Header().Get("X-Total-Count"))

		var resp productsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		require.Equal(t, "wheat-flour-all-purpose", resp.Data[0].ID)
		require.Equal(t, 2, resp.Pagination.PerPage)
		require.Equal(t, 3, resp.Pagination.TotalItems)
	})

	t.Run("bad filter", func(t *testing.T) {
		rec := get(t, router, "/api/v1/products?sort=cheapest")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "BAD_REQUEST", resp.Error.Code)
		require.Equal(t, "sort", resp.Error.Details["field"])
	})

	t.Run("product detail", func(t *testing.T) {
		rec := get(t, router, "/api/v1/products/toor-dal-25kg")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data catalog.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "QF-TD-007", resp.Data.SKU)
		require.Equal(t, 5, resp.Data.MinimumOrderQuantity)

		rec = get(t, router, "/api/v1/products/unknown")
		require.Equal(t, http.StatusNotFound, rec.Code)
		var errResp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		require.Equal(t, "NOT_FOUND", errResp.Error.Code)
	})

	t.Run("price preview", func(t *testing.T) {
		rec := get(t, router, "/api/v1/products/basmati-rice-premium/price?qty=50")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data catalog.PriceBreak `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 50, resp.Data.Quantity)
		require.Equal(t, "5520", resp.Data.Line.LineTotal.String())
		require.True(t, resp.Data.CanAddToCart)

		rec = get(t, router, "/api/v1/products/basmati-rice-premium/price")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 25, resp.Data.Quantity)

		rec = get(t, router, "/api/v1/products/basmati-rice-premium/price?qty=-3")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
