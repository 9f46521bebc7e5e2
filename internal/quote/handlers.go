package quote

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/wholesale-toko/internal/common"
	"github.com/noah-isme/wholesale-toko/internal/pricing"
)

// Handler exposes quote and calculator endpoints.
type Handler struct {
	Service *Service
}

// Routes mounts the quote endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/quotes", h.Create)
	r.Post("/pricing/evaluate", h.Evaluate)
}

// Create handles POST /api/v1/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.WriteError(w, common.NotConfigured("quote service"))
		return
	}
	var req Request
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	q, err := h.Service.Quote(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": q})
}

// Evaluate handles POST /api/v1/pricing/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.WriteError(w, common.NotConfigured("quote service"))
		return
	}
	var octx pricing.OrderContext
	if err := common.DecodeJSON(r, &octx); err != nil {
		common.WriteError(w, err)
		return
	}
	totals, err := h.Service.Evaluate(r.Context(), octx)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": totals})
}
