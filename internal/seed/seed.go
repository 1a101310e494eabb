// Package seed carga datos iniciales: el catálogo de cultos, festivos desde CSV y hermanos de prueba.
package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/utils"
)

type Store interface {
	GetServiceTypeByName(ctx context.Context, name string) (*domain.ServiceType, error)
	CreateServiceType(ctx context.Context, st *domain.ServiceType) error
	GetAllServiceTemplates(ctx context.Context) ([]*domain.ServiceTemplate, error)
	CreateServiceTemplate(ctx context.Context, tpl *domain.ServiceTemplate) error
	UpsertHoliday(ctx context.Context, h *domain.Holiday) (domain.HolidayKind, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// HolidayAdjuster mueve la hora de los cultos ya generados cuando cambia un festivo laborable.
type HolidayAdjuster interface {
	ApplyHoliday(ctx context.Context, h *domain.Holiday) (int, error)
	RevertHoliday(ctx context.Context, h *domain.Holiday) (int, error)
}

type CatalogEntry struct {
	Name        string
	Description string
	DayOfWeek   int32
	StartTime   string
}

var DefaultCatalog = []CatalogEntry{
	{Name: "Culto Dominical", Description: "Culto principal del domingo", DayOfWeek: 0, StartTime: "11:00:00"},
	{Name: "Estudio Bíblico", Description: "Estudio de la Palabra entre semana", DayOfWeek: 3, StartTime: "19:00:00"},
	{Name: "Culto de Oración", Description: "Reunión de oración", DayOfWeek: 5, StartTime: "19:30:00"},
	{Name: "Culto de Jóvenes", Description: "Culto de la juventud", DayOfWeek: 6, StartTime: "18:00:00"},
}

type CatalogResult struct {
	ServiceTypes int
	Templates    int
}

// SeedCatalog crea los tipos de culto y su plantilla semanal. Lo que ya existe se deja como está.
func SeedCatalog(ctx context.Context, store Store, entries []CatalogEntry) (*CatalogResult, error) {
	existing, err := store.GetAllServiceTemplates(ctx)
	if err != nil {
		return nil, err
	}
	type slot struct {
		day    int32
		typeID int64
	}
	have := make(map[slot]bool, len(existing))
	for _, tpl := range existing {
		have[slot{tpl.DayOfWeek, tpl.ServiceTypeID}] = true
	}

	res := &CatalogResult{}
	for _, e := range entries {
		st, err := store.GetServiceTypeByName(ctx, e.Name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			st = &domain.ServiceType{Name: e.Name, Description: e.Description}
			if err := store.CreateServiceType(ctx, st); err != nil {
				return res, fmt.Errorf("crear tipo %q: %w", e.Name, err)
			}
			res.ServiceTypes++
		case err != nil:
			return res, err
		}

		if have[slot{e.DayOfWeek, st.ID}] {
			continue
		}
		tpl := &domain.ServiceTemplate{DayOfWeek: e.DayOfWeek, ServiceTypeID: st.ID, DefaultStartTime: e.StartTime}
		if err := utils.ValidateServiceTemplate(tpl); err != nil {
			return res, err
		}
		if err := store.CreateServiceTemplate(ctx, tpl); err != nil {
			return res, fmt.Errorf("crear plantilla de %q: %w", e.Name, err)
		}
		have[slot{e.DayOfWeek, st.ID}] = true
		res.Templates++
	}

	return res, nil
}

// ReadHolidaysCSV lee un CSV con cabecera date,kind[,description]. La descripción puede faltar o ir vacía.
func ReadHolidaysCSV(r io.Reader) ([]*domain.Holiday, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "kind"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("falta la columna %q", name)
		}
	}

	holidays := make([]*domain.Holiday, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}

		date, err := calendar.ParseDate(strings.TrimSpace(row[col["date"]]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: fecha inválida %q", line, row[col["date"]])
		}
		h := &domain.Holiday{
			Date: date,
			Kind: domain.HolidayKind(strings.ToLower(strings.TrimSpace(row[col["kind"]]))),
		}
		if i, ok := col["description"]; ok && i < len(row) {
			h.Description = row[i]
		}
		if err := utils.ValidateHoliday(h); err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		holidays = append(holidays, h)
	}

	return holidays, nil
}

type ImportResult struct {
	Holidays         int
	AdjustedServices int
	RevertedServices int
}

// ImportHolidays guarda los festivos y recoloca los cultos ya generados en las fechas que pasan a ser,
// o dejan de ser, festivo laborable.
func ImportHolidays(ctx context.Context, store Store, adjuster HolidayAdjuster, holidays []*domain.Holiday) (*ImportResult, error) {
	res := &ImportResult{}
	for _, h := range holidays {
		previous, err := store.UpsertHoliday(ctx, h)
		if err != nil {
			return res, fmt.Errorf("guardar festivo %s: %w", calendar.DateKey(h.Date), err)
		}
		res.Holidays++

		wasWorking := previous == domain.HolidayWorking
		switch {
		case h.ShiftsStartTime() && !wasWorking:
			n, err := adjuster.ApplyHoliday(ctx, h)
			res.AdjustedServices += n
			if err != nil {
				return res, err
			}
		case !h.ShiftsStartTime() && wasWorking:
			old := *h
			old.Kind = previous
			n, err := adjuster.RevertHoliday(ctx, &old)
			res.RevertedServices += n
			if err != nil {
				return res, err
			}
		}
	}

	return res, nil
}

// SeedUsers inserta n hermanos aleatorios y devuelve cuántos se guardaron.
func SeedUsers(ctx context.Context, store Store, n int, password, emailDomain string) int {
	created := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(password, emailDomain)
		if err != nil {
			slog.Error("no se pudo generar el hermano", "error", err)
			continue
		}
		if err := store.CreateUser(ctx, user); err != nil {
			slog.Error("no se pudo insertar el hermano", "username", user.Username, "error", err)
			continue
		}
		created++
	}
	return created
}
