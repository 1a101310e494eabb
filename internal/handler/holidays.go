package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/repository"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/utils"
)

var errInvalidYearMonth = errors.New("year y month deben ser números válidos")

// yearMonth lee ?year=&month= de la consulta.
func yearMonth(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, errInvalidYearMonth
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errInvalidYearMonth
	}
	return year, month, nil
}

func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
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

	holidays, err := h.repository.GetHolidaysBetween(r.Context(), first, last)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "festivos obtenidos", holidays)
}

func (h *Handler) GetHoliday(w http.ResponseWriter, r *http.Request) {
	hol := r.Context().Value(HolidayCtx).(*domain.Holiday)
	h.successResponse(w, r, "festivo obtenido", hol)
}

type holidayChange struct {
	Holiday          *domain.Holiday `json:"holiday"`
	AdjustedServices int             `json:"adjustedServices"`
}

type createHolidayRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Kind        string `json:"kind" validate:"required,oneof=national regional local working"`
	Description string `json:"description" validate:"max=200"`
}

// CreateHoliday guarda el festivo y, si es laborable, adelanta los cultos ya generados ese día.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req createHolidayRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	hol := &domain.Holiday{Date: date, Kind: domain.HolidayKind(req.Kind), Description: req.Description}
	if err := utils.ValidateHoliday(hol); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateHoliday(r.Context(), hol); err != nil {
		switch {
		case repository.ConstraintViolated(err, "holidays_date_key"):
			h.badRequest(w, r, errors.New("ya hay un festivo registrado en esa fecha"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	n, err := h.generator.ApplyHoliday(r.Context(), hol)
	h.holidayChanged(w, r, "festivo creado", holidayChange{Holiday: hol, AdjustedServices: n}, err)
}

// DeleteHoliday borra el festivo y devuelve su hora a los cultos que había adelantado.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	hol := r.Context().Value(HolidayCtx).(*domain.Holiday)

	if err := h.repository.DeleteHoliday(r.Context(), hol.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	n, err := h.generator.RevertHoliday(r.Context(), hol)
	h.holidayChanged(w, r, "festivo eliminado", holidayChange{Holiday: hol, AdjustedServices: n}, err)
}

// holidayChanged responde tras guardar o borrar el festivo. Si falla el ajuste de los cultos, el
// cambio del festivo ya está hecho y se devuelven los cultos que sí se ajustaron.
func (h *Handler) holidayChanged(w http.ResponseWriter, r *http.Request, message string, change holidayChange, err error) {
	if err != nil {
		h.logInternalServerError(r, err)
		h.writeJSON(w, r, http.StatusInternalServerError, Response{
			Success: false,
			Message: "el festivo se ha actualizado, pero el ajuste de los cultos se interrumpió",
			Data:    change,
		})
		return
	}

	h.successResponse(w, r, message, change)
}
