package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/scheduler"
)

const viewVersionHeader = "X-View-Version"

// schedulerError traduce los errores del generador: los de negocio se devuelven tal cual al cliente.
func (h *Handler) schedulerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, scheduler.ErrInvalidMonth),
		errors.Is(err, scheduler.ErrInvalidYear),
		errors.Is(err, scheduler.ErrInvalidTemplate),
		errors.Is(err, scheduler.ErrInvalidRole),
		errors.Is(err, scheduler.ErrServiceNotFound),
		errors.Is(err, scheduler.ErrUserNotFound),
		errors.Is(err, scheduler.ErrInactiveUser),
		errors.Is(err, scheduler.ErrNotPulpitEligible),
		errors.Is(err, scheduler.ErrConcurrentUpdate):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) setViewVersion(w http.ResponseWriter, version func() (int64, error)) {
	if h.views == nil {
		return
	}
	v, err := version()
	if err != nil {
		slog.Warn("no se pudo leer la versión de la vista", "error", err)
		return
	}
	w.Header().Set(viewVersionHeader, strconv.FormatInt(v, 10))
}

func (h *Handler) GetServices(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	first, last, err := calendar.MonthRange(year, month)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	services, err := h.repository.GetServicesBetween(r.Context(), first, last)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.setViewVersion(w, func() (int64, error) {
		return h.views.MonthVersion(r.Context(), year, time.Month(month))
	})
	h.successResponse(w, r, "cultos obtenidos", services)
}

func (h *Handler) GenerateServices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year  int `json:"year" validate:"required,min=2000,max=2100"`
		Month int `json:"month" validate:"required,min=1,max=12"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.generator.Generate(r.Context(), req.Month, req.Year)
	if err != nil {
		if result == nil {
			h.schedulerError(w, r, err)
			return
		}
		// lote a medias: lo creado se queda y se informa
		h.logInternalServerError(r, err)
		h.writeJSON(w, r, http.StatusInternalServerError, Response{
			Success: false,
			Message: "la generación se interrumpió; los cultos creados hasta el fallo se han guardado",
			Data:    result,
		})
		return
	}

	h.successResponse(w, r, "cultos generados", result)
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)

	h.setViewVersion(w, func() (int64, error) {
		return h.views.ServiceVersion(r.Context(), svc.ID)
	})
	h.successResponse(w, r, "culto obtenido", svc)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)

	if err := h.repository.DeleteService(r.Context(), svc.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "el culto no existe")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if h.views != nil {
		if err := h.views.InvalidateService(r.Context(), svc.ID); err != nil {
			slog.Warn("no se pudo invalidar la vista del culto", "service", svc.ID, "error", err)
		}
		if err := h.views.InvalidateMonth(r.Context(), svc.Date.Year(), svc.Date.Month()); err != nil {
			slog.Warn("no se pudo invalidar la vista del mes", "service", svc.ID, "error", err)
		}
	}

	h.successResponse(w, r, "culto eliminado", nil)
}

// AssignServiceRole asigna el rol de la ruta; con userID null lo deja libre.
func (h *Handler) AssignServiceRole(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)
	role := domain.ServiceRole(chi.URLParam(r, "role"))

	var req struct {
		UserID *int64 `json:"userID" validate:"omitempty,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.generator.AssignRole(r.Context(), svc.ID, role, req.UserID)
	if err != nil {
		h.schedulerError(w, r, err)
		return
	}

	h.successResponse(w, r, "rol asignado", updated)
}

func (h *Handler) SetHolidayAdjustment(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)

	var req struct {
		Adjusted *bool `json:"adjusted" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	updated, err := h.generator.SetHolidayAdjustment(r.Context(), svc.ID, *req.Adjusted)
	if err != nil {
		h.schedulerError(w, r, err)
		return
	}

	h.successResponse(w, r, "ajuste por festivo actualizado", updated)
}
