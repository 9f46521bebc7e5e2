package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/wholesale-toko/internal/common"
)

// Handler serves the delivery slot picker.
type Handler struct {
	Catalog *Catalog
}

// Routes mounts the delivery endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/delivery/slots", h.List)
}

// List handles GET /api/v1/delivery/slots.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	slots := h.Catalog.Slots()
	if slots == nil {
		slots = []Slot{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": slots})
}
