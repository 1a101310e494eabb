package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

var errStoreDown = errors.New("store down")

type memStore struct {
	templates []*domain.ServiceTemplate
	holidays  []*domain.Holiday
	services  map[int64]*domain.Service
	users     map[int64]*domain.User
	nextID    int64

	// failCreateAt hace fallar la inserción número n (empezando en 1); 0 la desactiva
	failCreateAt int
	createCalls  int
	// racedKeys simula cultos creados por otro proceso después de la lectura inicial
	racedKeys map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		services:  make(map[int64]*domain.Service),
		users:     make(map[int64]*domain.User),
		racedKeys: make(map[string]bool),
	}
}

func (m *memStore) GetAllServiceTemplates(ctx context.Context) ([]*domain.ServiceTemplate, error) {
	return m.templates, nil
}

func (m *memStore) GetHolidaysBetween(ctx context.Context, from, to time.Time) ([]*domain.Holiday, error) {
	var out []*domain.Holiday
	for _, h := range m.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStore) sorted() []*domain.Service {
	out := make([]*domain.Service, 0, len(m.services))
	for _, svc := range m.services {
		cp := *svc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) GetServicesBetween(ctx context.Context, from, to time.Time) ([]*domain.Service, error) {
	var out []*domain.Service
	for _, svc := range m.sorted() {
		if !svc.Date.Before(from) && !svc.Date.After(to) {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (m *memStore) GetServicesByDate(ctx context.Context, date time.Time) ([]*domain.Service, error) {
	return m.GetServicesBetween(ctx, date, date)
}

func (m *memStore) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *svc
	return &cp, nil
}

func (m *memStore) CreateServiceIfAbsent(ctx context.Context, svc *domain.Service) (bool, error) {
	m.createCalls++
	if m.failCreateAt > 0 && m.createCalls == m.failCreateAt {
		return false, errStoreDown
	}
	if m.racedKeys[calendar.DateKey(svc.Date)] {
		return false, nil
	}
	for _, existing := range m.services {
		if existing.Date.Equal(svc.Date) && existing.ServiceTypeID == svc.ServiceTypeID {
			return false, nil
		}
	}

	m.nextID++
	svc.ID = m.nextID
	svc.Version = 1
	cp := *svc
	m.services[svc.ID] = &cp
	return true, nil
}

func (m *memStore) UpdateService(ctx context.Context, svc *domain.Service) error {
	stored, ok := m.services[svc.ID]
	if !ok || stored.Version != svc.Version {
		return sql.ErrNoRows
	}
	svc.Version++
	cp := *svc
	m.services[svc.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type recordingViews struct {
	services []int64
	months   []string
	// err se devuelve en cada invalidación después de registrarla
	err error
}

func (v *recordingViews) InvalidateService(ctx context.Context, serviceID int64) error {
	v.services = append(v.services, serviceID)
	return v.err
}

func (v *recordingViews) InvalidateMonth(ctx context.Context, year int, month time.Month) error {
	v.months = append(v.months, time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"))
	return v.err
}

func date(s string) time.Time {
	d, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
