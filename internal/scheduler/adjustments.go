package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

// SetHolidayAdjustment activa o desactiva el adelanto por festivo de un culto. Si el indicador ya tiene
// el valor pedido no se toca nada.
func (g *Generator) SetHolidayAdjustment(ctx context.Context, serviceID int64, adjusted bool) (*domain.Service, error) {
	svc, err := g.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if svc.IsHolidayAdjusted == adjusted {
		return svc, nil
	}

	defaults, err := g.templateDefaults(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.adjust(svc, adjusted, defaults); err != nil {
		return nil, err
	}

	if err := g.update(ctx, svc); err != nil {
		return nil, err
	}
	g.invalidateService(ctx, svc)

	return svc, nil
}

// ApplyHoliday adelanta los cultos ya generados en la fecha de un festivo laborable recién creado.
func (g *Generator) ApplyHoliday(ctx context.Context, holiday *domain.Holiday) (int, error) {
	return g.applyToDate(ctx, holiday, true)
}

// RevertHoliday deshace el adelanto cuando se borra un festivo laborable.
func (g *Generator) RevertHoliday(ctx context.Context, holiday *domain.Holiday) (int, error) {
	return g.applyToDate(ctx, holiday, false)
}

func (g *Generator) applyToDate(ctx context.Context, holiday *domain.Holiday, adjusted bool) (int, error) {
	if !holiday.ShiftsStartTime() {
		return 0, nil
	}

	services, err := g.store.GetServicesByDate(ctx, calendar.Day(holiday.Date))
	if err != nil {
		return 0, fmt.Errorf("cargar cultos del %s: %w", calendar.DateKey(holiday.Date), err)
	}

	defaults, err := g.templateDefaults(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, svc := range services {
		if svc.IsHolidayAdjusted == adjusted {
			continue
		}
		if err := g.adjust(svc, adjusted, defaults); err != nil {
			return n, err
		}
		if err := g.update(ctx, svc); err != nil {
			return n, err
		}
		g.invalidateServiceView(ctx, svc.ID)
		n++
	}

	if n > 0 {
		g.invalidateMonth(ctx, holiday.Date.Year(), holiday.Date.Month())
	}

	return n, nil
}

// templateDefaults indexa la hora por defecto de cada plantilla por (día de la semana, tipo).
func (g *Generator) templateDefaults(ctx context.Context) (map[templateKey]string, error) {
	templates, err := g.store.GetAllServiceTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar plantillas: %w", err)
	}
	defaults := make(map[templateKey]string, len(templates))
	for _, tpl := range templates {
		defaults[templateKey{time.Weekday(tpl.DayOfWeek), tpl.ServiceTypeID}] = tpl.DefaultStartTime
	}
	return defaults, nil
}

type templateKey struct {
	weekday       time.Weekday
	serviceTypeID int64
}

// adjust adelanta o restaura la hora del culto. El adelanto se recorta en 00:00, así que al restaurar
// se toma la hora de la plantilla; solo si ya no hay plantilla se suma el desfase.
func (g *Generator) adjust(svc *domain.Service, adjusted bool, defaults map[templateKey]string) error {
	if adjusted {
		start, err := calendar.ShiftClock(svc.StartTime, -g.offset)
		if err != nil {
			return err
		}
		svc.StartTime = start
		svc.IsHolidayAdjusted = true
		return nil
	}

	if def, ok := defaults[templateKey{svc.Date.Weekday(), svc.ServiceTypeID}]; ok {
		svc.StartTime = def
		svc.IsHolidayAdjusted = false
		return nil
	}

	start, err := calendar.ShiftClock(svc.StartTime, g.offset)
	if err != nil {
		return err
	}
	svc.StartTime = start
	svc.IsHolidayAdjusted = false
	return nil
}

// AssignRole asigna (o libera, con userID nil) uno de los roles del culto.
func (g *Generator) AssignRole(ctx context.Context, serviceID int64, role domain.ServiceRole, userID *int64) (*domain.Service, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	svc, err := g.getService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if userID != nil {
		user, err := g.store.GetUserByID(ctx, *userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if !user.IsActive {
			return nil, ErrInactiveUser
		}
		if role.RequiresPulpit() && !user.IsPulpitEligible {
			return nil, ErrNotPulpitEligible
		}
	}

	svc.Assign(role, userID)
	if err := g.update(ctx, svc); err != nil {
		return nil, err
	}
	g.invalidateService(ctx, svc)

	return svc, nil
}

func (g *Generator) getService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := g.store.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

func (g *Generator) update(ctx context.Context, svc *domain.Service) error {
	if err := g.store.UpdateService(ctx, svc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConcurrentUpdate
		}
		return err
	}
	return nil
}
