package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

func seededStore() *memStore {
	store := newMemStore()
	store.services[1] = &domain.Service{ID: 1, Date: date("2025-01-08"), ServiceTypeID: estudioBiblico, StartTime: "19:00:00", Version: 1}
	store.services[2] = &domain.Service{ID: 2, Date: date("2025-01-08"), ServiceTypeID: alabanza, StartTime: "20:30:00", Version: 1}
	store.services[3] = &domain.Service{ID: 3, Date: date("2025-01-15"), ServiceTypeID: estudioBiblico, StartTime: "19:00:00", Version: 1}
	store.users[10] = &domain.User{ID: 10, FullName: "Ana Ruiz", IsActive: true, IsPulpitEligible: true}
	store.users[11] = &domain.User{ID: 11, FullName: "Luis Gil", IsActive: true}
	store.users[12] = &domain.User{ID: 12, FullName: "Eva Sanz", IsActive: false, IsPulpitEligible: true}
	return store
}

func TestSetHolidayAdjustmentToggles(t *testing.T) {
	store := seededStore()
	views := &recordingViews{}
	g := NewGenerator(store, views, time.Hour)

	svc, err := g.SetHolidayAdjustment(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, "18:00:00", svc.StartTime)
	assert.True(t, svc.IsHolidayAdjusted)
	assert.Equal(t, "18:00:00", store.services[1].StartTime)

	// repetir el mismo valor no vuelve a restar la hora
	svc, err = g.SetHolidayAdjustment(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, "18:00:00", svc.StartTime)

	svc, err = g.SetHolidayAdjustment(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "19:00:00", svc.StartTime)
	assert.False(t, svc.IsHolidayAdjusted)

	assert.Equal(t, []int64{1, 1}, views.services)
}

func TestSetHolidayAdjustmentUnknownService(t *testing.T) {
	g := NewGenerator(seededStore(), nil, time.Hour)

	_, err := g.SetHolidayAdjustment(context.Background(), 99, true)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestApplyAndRevertWorkingHoliday(t *testing.T) {
	store := seededStore()
	g := NewGenerator(store, nil, time.Hour)
	holiday := &domain.Holiday{Date: date("2025-01-08"), Kind: domain.HolidayWorking}

	n, err := g.ApplyHoliday(context.Background(), holiday)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "18:00:00", store.services[1].StartTime)
	assert.Equal(t, "19:30:00", store.services[2].StartTime)
	assert.Equal(t, "19:00:00", store.services[3].StartTime)

	n, err = g.ApplyHoliday(context.Background(), holiday)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = g.RevertHoliday(context.Background(), holiday)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "19:00:00", store.services[1].StartTime)
	assert.False(t, store.services[2].IsHolidayAdjusted)
}

func TestApplyHolidayIgnoresInformationalKinds(t *testing.T) {
	store := seededStore()
	g := NewGenerator(store, nil, time.Hour)

	n, err := g.ApplyHoliday(context.Background(), &domain.Holiday{Date: date("2025-01-08"), Kind: domain.HolidayRegional})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "19:00:00", store.services[1].StartTime)
}

func TestAssignRole(t *testing.T) {
	store := seededStore()
	g := NewGenerator(store, nil, time.Hour)
	ctx := context.Background()
	ana, luis, eva, nobody := int64(10), int64(11), int64(12), int64(99)

	svc, err := g.AssignRole(ctx, 1, domain.ServiceRoleIntroReader, &luis)
	require.NoError(t, err)
	require.NotNil(t, svc.IntroReaderID)
	assert.Equal(t, luis, *svc.IntroReaderID)

	svc, err = g.AssignRole(ctx, 1, domain.ServiceRoleTeachingLeader, &ana)
	require.NoError(t, err)
	assert.Equal(t, ana, *svc.TeachingLeaderID)
	assert.Equal(t, luis, *store.services[1].IntroReaderID)

	_, err = g.AssignRole(ctx, 1, domain.ServiceRoleTestimoniesLeader, &luis)
	assert.ErrorIs(t, err, ErrNotPulpitEligible)

	_, err = g.AssignRole(ctx, 1, domain.ServiceRoleClosingReader, &eva)
	assert.ErrorIs(t, err, ErrInactiveUser)

	_, err = g.AssignRole(ctx, 1, domain.ServiceRoleClosingReader, &nobody)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = g.AssignRole(ctx, 1, domain.ServiceRole("organist"), &ana)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = g.AssignRole(ctx, 42, domain.ServiceRoleIntroReader, &ana)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	svc, err = g.AssignRole(ctx, 1, domain.ServiceRoleIntroReader, nil)
	require.NoError(t, err)
	assert.Nil(t, svc.IntroReaderID)
}

func TestAssignRoleStaleVersion(t *testing.T) {
	store := seededStore()
	g := NewGenerator(&staleStore{store}, nil, time.Hour)
	luis := int64(11)

	_, err := g.AssignRole(context.Background(), 1, domain.ServiceRoleIntroReader, &luis)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

// staleStore simula que otra petición actualizó el culto entre la lectura y la escritura
type staleStore struct {
	*memStore
}

func (s *staleStore) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.memStore.GetServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	svc.Version--
	return svc, nil
}

func earlyStore() *memStore {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{
		{ID: 1, DayOfWeek: int32(time.Wednesday), ServiceTypeID: estudioBiblico, DefaultStartTime: "00:30:00"},
	}
	store.services[1] = &domain.Service{ID: 1, Date: date("2025-01-08"), ServiceTypeID: estudioBiblico, StartTime: "00:30:00", Version: 1}
	return store
}

func TestSetHolidayAdjustmentRestoresClampedStart(t *testing.T) {
	store := earlyStore()
	g := NewGenerator(store, nil, time.Hour)

	svc, err := g.SetHolidayAdjustment(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, "00:00:00", svc.StartTime)

	svc, err = g.SetHolidayAdjustment(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "00:30:00", svc.StartTime)
	assert.False(t, svc.IsHolidayAdjusted)
}

func TestRevertHolidayRestoresClampedStart(t *testing.T) {
	store := earlyStore()
	g := NewGenerator(store, nil, time.Hour)
	holiday := &domain.Holiday{Date: date("2025-01-08"), Kind: domain.HolidayWorking}

	_, err := g.ApplyHoliday(context.Background(), holiday)
	require.NoError(t, err)
	assert.Equal(t, "00:00:00", store.services[1].StartTime)

	n, err := g.RevertHoliday(context.Background(), holiday)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "00:30:00", store.services[1].StartTime)
	assert.False(t, store.services[1].IsHolidayAdjusted)
}

func TestApplyHolidayKeepsGoingWhenInvalidationFails(t *testing.T) {
	store := seededStore()
	views := &recordingViews{err: errors.New("redis caído")}
	g := NewGenerator(store, views, time.Hour)

	n, err := g.ApplyHoliday(context.Background(), &domain.Holiday{Date: date("2025-01-08"), Kind: domain.HolidayWorking})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 2}, views.services)
	assert.Equal(t, []string{"2025-01"}, views.months)
}
