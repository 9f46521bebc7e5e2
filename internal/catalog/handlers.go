package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/wholesale-toko/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Routes mounts the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/categories", h.Categories)
	r.Get("/brands", h.Brands)
	r.Get("/products", h.Products)
	r.Get("/products/{id}", h.Product)
	r.Get("/products/{id}/price", h.Price)
}

// Brands handles GET /api/v1/brands.
func (h *Handler) Brands(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.WriteError(w, common.NotConfigured("catalog service"))
		return
	}
	rows, err := h.service.ListBrands(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// Categories handles GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.WriteError(w, common.NotConfigured("catalog service"))
		return
	}
	rows, err := h.service.ListCategories(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rows})
}

// Products handles GET /api/v1/products with filters, sorting, and pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.WriteError(w, common.NotConfigured("catalog service"))
		return
	}
	filter, err := h.service.ParseFilter(r.URL.Query())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       result.Items,
		"pagination": common.NewPagination(result.Page, result.Limit, result.Total),
	})
}

// Product handles GET /api/v1/products/{id}.
func (h *Handler) Product(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.WriteError(w, common.NotConfigured("catalog service"))
		return
	}
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

// Price handles GET /api/v1/products/{id}/price?qty=N.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.WriteError(w, common.NotConfigured("catalog service"))
		return
	}
	qty := 0
	if v := strings.TrimSpace(r.URL.Query().Get("qty")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			if err == nil {
				err = errors.New("negative quantity")
			}
			common.WriteError(w, common.BadRequest("qty", "qty must be a non-negative integer", err))
			return
		}
		qty = parsed
	}
	id := chi.URLParam(r, "id")
	if qty == 0 {
		product, err := h.service.Get(r.Context(), id)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		qty = product.MinimumOrderQuantity
	}
	preview, err := h.service.PriceBreak(r.Context(), id, qty)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": preview})
}
