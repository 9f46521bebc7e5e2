package promo

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/wholesale-toko/internal/common"
)

// InvalidCodeError maps a Resolve failure onto a 422 PROMO_INVALID error. Errors that are not
// promo validation failures are wrapped and returned unchanged.
func InvalidCodeError(code string, err error) error {
	var reason string
	switch {
	case errors.Is(err, ErrUnknownCode):
		reason = "unknown"
	case errors.Is(err, ErrInactive):
		reason = "inactive"
	case errors.Is(err, ErrExpired):
		reason = "expired"
	case errors.Is(err, ErrMinimumSpendUnmet):
		reason = "minimum_spend"
	default:
		return fmt.Errorf("resolve promo: %w", err)
	}
	return common.Unprocessable("PROMO_INVALID", "", err).
		WithDetails(map[string]any{"promoCode": NormalizeCode(code), "reason": reason})
}

// Handler exposes promo code checks for the cart page.
type Handler struct {
	Service *Service
}

// Routes mounts the promo endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/promos/validate", h.Validate)
}

type validateRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Validate handles POST /api/v1/promos/validate. The subtotal is the bulk-discounted cart
// subtotal the code would be applied against.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.WriteError(w, common.NotConfigured("promo service"))
		return
	}
	var req validateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if NormalizeCode(req.Code) == "" {
		common.WriteError(w, common.ValidationFailed([]common.FieldError{{Field: "code", Rule: "required", Message: "is required"}}))
		return
	}
	if req.Subtotal.IsNegative() {
		common.WriteError(w, common.ValidationFailed([]common.FieldError{{Field: "subtotal", Rule: "gte", Message: "must be greater than or equal to 0"}}))
		return
	}
	applied, err := h.Service.Resolve(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		common.WriteError(w, InvalidCodeError(req.Code, err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": applied})
}
