package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/wholesale-toko/internal/common"
)

// Handler exposes checkout review endpoints.
type Handler struct {
	Svc *Service
}

// Routes mounts the checkout endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/checkout/credit-terms", h.CreditTerms)
	r.Post("/checkout/steps/advance", h.Advance)
	r.Post("/checkout/review", h.Review)
}

// CreditTerms handles GET /api/v1/checkout/credit-terms.
func (h *Handler) CreditTerms(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.WriteError(w, common.NotConfigured("checkout service"))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"creditTerms":    h.Svc.Flow.Terms,
		"paymentMethods": h.Svc.Flow.PaymentMethods(),
	}})
}

type advanceRequest struct {
	State     State  `json:"state"`
	Direction string `json:"direction"`
}

// Advance handles POST /api/v1/checkout/steps/advance.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.WriteError(w, common.NotConfigured("checkout service"))
		return
	}
	var payload advanceRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	state, err := h.Svc.Move(payload.State, payload.Direction)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": state})
}

// Review handles POST /api/v1/checkout/review.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.WriteError(w, common.NotConfigured("checkout service"))
		return
	}
	var payload ReviewRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	review, err := h.Svc.Review(r.Context(), payload)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": review})
}
