package handler

import (
	"errors"
	"net/http"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/repository"
)

func (h *Handler) GetAllServiceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.repository.GetAllServiceTypes(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "tipos de culto obtenidos", types)
}

func (h *Handler) GetServiceType(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ServiceTypeCtx).(*domain.ServiceType)
	h.successResponse(w, r, "tipo de culto obtenido", st)
}

func (h *Handler) CreateServiceType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required,max=100"`
		Description string `json:"description" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := &domain.ServiceType{Name: req.Name, Description: req.Description}
	if err := h.repository.CreateServiceType(r.Context(), st); err != nil {
		switch {
		case repository.ConstraintViolated(err, "service_types_name_key"):
			h.badRequest(w, r, errors.New("ya existe un tipo de culto con ese nombre"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "tipo de culto creado", st)
}

func (h *Handler) UpdateServiceType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
		Description *string `json:"description" validate:"omitempty,max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	st := r.Context().Value(ServiceTypeCtx).(*domain.ServiceType)
	if req.Name != nil {
		st.Name = *req.Name
	}
	if req.Description != nil {
		st.Description = *req.Description
	}

	if err := h.repository.UpdateServiceType(r.Context(), st); err != nil {
		switch {
		case repository.ConstraintViolated(err, "service_types_name_key"):
			h.badRequest(w, r, errors.New("ya existe un tipo de culto con ese nombre"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "tipo de culto actualizado", st)
}

func (h *Handler) DeleteServiceType(w http.ResponseWriter, r *http.Request) {
	st := r.Context().Value(ServiceTypeCtx).(*domain.ServiceType)

	if err := h.repository.DeleteServiceType(r.Context(), st.ID); err != nil {
		switch {
		case repository.ConstraintViolated(err, "services_service_type_id_fkey"):
			h.errorResponse(w, r, "hay cultos generados de este tipo; no se puede borrar")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "tipo de culto eliminado", nil)
}
