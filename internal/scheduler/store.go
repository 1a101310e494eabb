package scheduler

import (
	"context"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

// Store es lo que el generador necesita de la capa de persistencia. Las búsquedas por id devuelven
// sql.ErrNoRows cuando no existe la fila, igual que el repositorio.
type Store interface {
	GetAllServiceTemplates(ctx context.Context) ([]*domain.ServiceTemplate, error)
	GetHolidaysBetween(ctx context.Context, from, to time.Time) ([]*domain.Holiday, error)
	GetServicesBetween(ctx context.Context, from, to time.Time) ([]*domain.Service, error)
	GetServicesByDate(ctx context.Context, date time.Time) ([]*domain.Service, error)
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	// CreateServiceIfAbsent inserta el culto salvo que ya exista uno con la misma (fecha, tipo).
	CreateServiceIfAbsent(ctx context.Context, svc *domain.Service) (bool, error)
	UpdateService(ctx context.Context, svc *domain.Service) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Invalidator marca como obsoletas las vistas cacheadas de un culto o de un mes.
type Invalidator interface {
	InvalidateService(ctx context.Context, serviceID int64) error
	InvalidateMonth(ctx context.Context, year int, month time.Month) error
}
