package handler

import (
	"errors"
	"net/http"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/repository"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/utils"
)

func (h *Handler) GetAllServiceTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repository.GetAllServiceTemplates(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantillas obtenidas", templates)
}

func (h *Handler) GetServiceTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := r.Context().Value(ServiceTemplateCtx).(*domain.ServiceTemplate)
	h.successResponse(w, r, "plantilla obtenida", tpl)
}

func (h *Handler) CreateServiceTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DayOfWeek        *int32 `json:"dayOfWeek" validate:"required,min=0,max=6"`
		ServiceTypeID    int64  `json:"serviceTypeID" validate:"required,gt=0"`
		DefaultStartTime string `json:"defaultStartTime" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	tpl := &domain.ServiceTemplate{
		DayOfWeek:        *req.DayOfWeek,
		ServiceTypeID:    req.ServiceTypeID,
		DefaultStartTime: req.DefaultStartTime,
	}
	if err := utils.ValidateServiceTemplate(tpl); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateServiceTemplate(r.Context(), tpl); err != nil {
		switch {
		case repository.ConstraintViolated(err, "service_templates_day_of_week_service_type_id_key"):
			h.badRequest(w, r, errors.New("ese tipo de culto ya tiene plantilla ese día"))
		case repository.ConstraintViolated(err, "service_templates_service_type_id_fkey"):
			h.badRequest(w, r, errors.New("el tipo de culto no existe"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "plantilla creada", tpl)
}

// UpdateServiceTemplate solo cambia la hora por defecto; afecta a los meses que se generen después.
func (h *Handler) UpdateServiceTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DefaultStartTime string `json:"defaultStartTime" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	tpl := r.Context().Value(ServiceTemplateCtx).(*domain.ServiceTemplate)
	tpl.DefaultStartTime = req.DefaultStartTime
	if err := utils.ValidateServiceTemplate(tpl); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateServiceTemplateTime(r.Context(), tpl); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantilla actualizada", tpl)
}

func (h *Handler) DeleteServiceTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := r.Context().Value(ServiceTemplateCtx).(*domain.ServiceTemplate)

	if err := h.repository.DeleteServiceTemplate(r.Context(), tpl.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "plantilla eliminada", nil)
}
