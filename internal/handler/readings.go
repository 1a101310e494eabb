package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/readings"
)

type recordReadingRequest struct {
	Role         string `json:"role" validate:"required,oneof=introduction closing"`
	Book         string `json:"book" validate:"required,max=50"`
	StartChapter int32  `json:"startChapter" validate:"required,min=1"`
	StartVerse   int32  `json:"startVerse" validate:"required,min=1"`
	EndChapter   *int32 `json:"endChapter" validate:"omitempty,min=1"`
	EndVerse     *int32 `json:"endVerse" validate:"omitempty,min=1"`
	ReaderID     int64  `json:"readerID" validate:"required,gt=0"`
}

func (req recordReadingRequest) toRecord(serviceID int64) readings.RecordRequest {
	return readings.RecordRequest{
		ServiceID:    serviceID,
		Role:         domain.ReadingRole(req.Role),
		Book:         req.Book,
		StartChapter: req.StartChapter,
		StartVerse:   req.StartVerse,
		EndChapter:   req.EndChapter,
		EndVerse:     req.EndVerse,
		ReaderID:     req.ReaderID,
	}
}

func (h *Handler) readingsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, readings.ErrInvalidCitation),
		errors.Is(err, readings.ErrInvalidRole),
		errors.Is(err, readings.ErrServiceNotFound),
		errors.Is(err, readings.ErrReaderNotFound),
		errors.Is(err, readings.ErrReadingNotFound):
		h.errorResponse(w, r, err.Error())
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetServiceReadings(w http.ResponseWriter, r *http.Request) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)

	items, err := h.registry.ListForService(r.Context(), svc.ID)
	if err != nil {
		h.readingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "lecturas del culto obtenidas", items)
}

func (h *Handler) decodeReading(w http.ResponseWriter, r *http.Request) (readings.RecordRequest, bool) {
	svc := r.Context().Value(ServiceCtx).(*domain.Service)

	var req recordReadingRequest
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return readings.RecordRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return readings.RecordRequest{}, false
	}

	return req.toRecord(svc.ID), true
}

// RecordReading guarda la lectura. Si la cita ya se leyó en otro culto responde success=false con
// requiresConfirmation y los datos de la lectura original; el cliente confirma en /confirm.
func (h *Handler) RecordReading(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReading(w, r)
	if !ok {
		return
	}

	out, err := h.registry.Record(r.Context(), req)
	if err != nil {
		h.readingsError(w, r, err)
		return
	}

	if out.RequiresConfirmation() {
		h.writeJSON(w, r, http.StatusOK, Response{
			Success: false,
			Message: "esta cita ya se leyó en otro culto; confirma si quieres repetirla",
			Data: map[string]any{
				"requiresConfirmation": true,
				"conflict":             out.Conflict,
			},
		})
		return
	}

	h.successResponse(w, r, "lectura guardada", out.Reading)
}

func (h *Handler) ConfirmRepeatReading(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeReading(w, r)
	if !ok {
		return
	}

	out, err := h.registry.ConfirmRepeat(r.Context(), req)
	if err != nil {
		h.readingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "lectura guardada como repetida", out.Reading)
}

func (h *Handler) GetReadings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := readings.ListRequest{Book: q.Get("book")}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			h.badRequest(w, r, errors.New("page debe ser un número"))
			return
		}
		req.Page = page
	}
	if v := q.Get("pageSize"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			h.badRequest(w, r, errors.New("pageSize debe ser un número"))
			return
		}
		req.PageSize = size
	}

	page, err := h.registry.List(r.Context(), req)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "historial de lecturas obtenido", page)
}

func (h *Handler) GetReading(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.errorResponse(w, r, "id de lectura inválido")
		return
	}

	reading, err := h.registry.Get(r.Context(), id)
	if err != nil {
		h.readingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "lectura obtenida", reading)
}

func (h *Handler) DeleteReading(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.errorResponse(w, r, "id de lectura inválido")
		return
	}

	if err := h.registry.Delete(r.Context(), id); err != nil {
		h.readingsError(w, r, err)
		return
	}

	h.successResponse(w, r, "lectura eliminada", nil)
}
