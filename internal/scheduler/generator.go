package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

const (
	MinYear = 2000
	MaxYear = 2100

	DefaultHolidayOffset = time.Hour
)

type Generator struct {
	store  Store
	views  Invalidator
	offset time.Duration // cuánto se adelanta un culto en festivo laborable
}

func NewGenerator(store Store, views Invalidator, holidayOffset time.Duration) *Generator {
	if holidayOffset <= 0 {
		holidayOffset = DefaultHolidayOffset
	}
	return &Generator{
		store:  store,
		views:  views,
		offset: holidayOffset,
	}
}

type GenerateResult struct {
	Year     int               `json:"year"`
	Month    int               `json:"month"`
	Created  int               `json:"created"`
	Skipped  int               `json:"skipped"`
	Services []*domain.Service `json:"services"`
}

type serviceKey struct {
	date          string
	serviceTypeID int64
}

// Generate crea los cultos del mes a partir de la plantilla semanal. Los pares (fecha, tipo) que ya
// existen se saltan, así que ejecutarlo dos veces no duplica nada. Si falla la persistencia a mitad
// del lote, los cultos ya insertados se conservan y se devuelven en el resultado junto al error.
func (g *Generator) Generate(ctx context.Context, month, year int) (*GenerateResult, error) {
	if year < MinYear || year > MaxYear {
		return nil, ErrInvalidYear
	}
	dates, err := calendar.MonthDates(year, month)
	if err != nil {
		return nil, ErrInvalidMonth
	}
	first, last := dates[0], dates[len(dates)-1]

	templates, err := g.store.GetAllServiceTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar plantillas: %w", err)
	}
	byWeekday := make(map[time.Weekday][]*domain.ServiceTemplate)
	for _, tpl := range templates {
		if tpl.DayOfWeek < 0 || tpl.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: día %d", ErrInvalidTemplate, tpl.DayOfWeek)
		}
		wd := time.Weekday(tpl.DayOfWeek)
		byWeekday[wd] = append(byWeekday[wd], tpl)
	}

	holidays, err := g.store.GetHolidaysBetween(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("cargar festivos: %w", err)
	}
	working := make(map[string]bool)
	for _, h := range holidays {
		if h.ShiftsStartTime() {
			working[calendar.DateKey(h.Date)] = true
		}
	}

	existing, err := g.store.GetServicesBetween(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("cargar cultos existentes: %w", err)
	}
	seen := make(map[serviceKey]bool, len(existing))
	for _, svc := range existing {
		seen[serviceKey{calendar.DateKey(svc.Date), svc.ServiceTypeID}] = true
	}

	result := &GenerateResult{
		Year:     year,
		Month:    month,
		Services: make([]*domain.Service, 0),
	}

	for _, date := range dates {
		for _, tpl := range byWeekday[date.Weekday()] {
			key := serviceKey{calendar.DateKey(date), tpl.ServiceTypeID}
			if seen[key] {
				result.Skipped++
				continue
			}

			svc, err := g.newService(date, tpl, working[key.date])
			if err != nil {
				g.afterBatch(ctx, result)
				return result, err
			}

			inserted, err := g.store.CreateServiceIfAbsent(ctx, svc)
			if err != nil {
				g.afterBatch(ctx, result)
				return result, fmt.Errorf("crear culto del %s: %w", key.date, err)
			}
			seen[key] = true

			// otro administrador pudo haberlo creado entre la lectura y el insert
			if !inserted {
				result.Skipped++
				continue
			}
			result.Created++
			result.Services = append(result.Services, svc)
		}
	}

	g.afterBatch(ctx, result)
	slog.Info("cultos generados", "year", year, "month", month, "created", result.Created, "skipped", result.Skipped)

	return result, nil
}

func (g *Generator) newService(date time.Time, tpl *domain.ServiceTemplate, workingHoliday bool) (*domain.Service, error) {
	svc := &domain.Service{
		Date:          date,
		ServiceTypeID: tpl.ServiceTypeID,
		StartTime:     tpl.DefaultStartTime,
	}
	if _, err := calendar.ParseClock(tpl.DefaultStartTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	if workingHoliday {
		start, err := calendar.ShiftClock(tpl.DefaultStartTime, -g.offset)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
		}
		svc.StartTime = start
		svc.IsHolidayAdjusted = true
	}

	return svc, nil
}

func (g *Generator) afterBatch(ctx context.Context, result *GenerateResult) {
	if result.Created == 0 {
		return
	}
	g.invalidateMonth(ctx, result.Year, time.Month(result.Month))
}

func (g *Generator) invalidateMonth(ctx context.Context, year int, month time.Month) {
	if g.views == nil {
		return
	}
	if err := g.views.InvalidateMonth(ctx, year, month); err != nil {
		slog.Warn("no se pudo invalidar la vista del mes", "year", year, "month", int(month), "error", err)
	}
}

func (g *Generator) invalidateService(ctx context.Context, svc *domain.Service) {
	g.invalidateServiceView(ctx, svc.ID)
	g.invalidateMonth(ctx, svc.Date.Year(), svc.Date.Month())
}

func (g *Generator) invalidateServiceView(ctx context.Context, id int64) {
	if g.views == nil {
		return
	}
	if err := g.views.InvalidateService(ctx, id); err != nil {
		slog.Warn("no se pudo invalidar la vista del culto", "service", id, "error", err)
	}
}
