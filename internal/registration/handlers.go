package registration

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/wholesale-toko/internal/common"
)

// Handler exposes registration validation endpoints. Nothing is persisted.
type Handler struct {
	Validator *Validator
}

// Routes mounts the registration endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/registration/steps/{step}", h.ValidateStep)
	r.Post("/registration/validate", h.ValidateApplication)
}

// ValidateStep handles POST /api/v1/registration/steps/{step}.
func (h *Handler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	if h.Validator == nil {
		common.WriteError(w, common.NotConfigured("registration validator"))
		return
	}
	step, err := ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		common.WriteError(w, common.NotFound("", err))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		common.WriteError(w, common.NewError(http.StatusBadRequest, common.CodeBadRequest, "unable to read body", err))
		return
	}
	fields, err := h.Validator.ValidateStep(step, body)
	if err != nil {
		common.WriteError(w, common.NewError(http.StatusBadRequest, common.CodeBadRequest, "invalid JSON body", err))
		return
	}
	writeResult(w, step, fields)
}

// ValidateApplication handles POST /api/v1/registration/validate.
func (h *Handler) ValidateApplication(w http.ResponseWriter, r *http.Request) {
	if h.Validator == nil {
		common.WriteError(w, common.NotConfigured("registration validator"))
		return
	}
	var app Application
	if err := common.DecodeJSON(r, &app); err != nil {
		common.WriteError(w, err)
		return
	}
	writeResult(w, "", h.Validator.ValidateApplication(app))
}

func writeResult(w http.ResponseWriter, step Step, fields []common.FieldError) {
	if len(fields) > 0 {
		common.JSONError(w, http.StatusUnprocessableEntity, common.CodeValidationFailed, "registration details are invalid",
			map[string]any{"step": step, "fields": fields})
		return
	}
	resp := map[string]any{"valid": true}
	if step != "" {
		resp["step"] = step
		for i, s := range Steps {
			if s == step && i+1 < len(Steps) {
				resp["nextStep"] = Steps[i+1]
			}
		}
	}
	common.JSON(w, http.StatusOK, resp)
}
