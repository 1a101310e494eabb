package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

const (
	estudioBiblico int64 = 1
	ensenanza      int64 = 2
	alabanza       int64 = 3
)

func wednesdayStudy() *domain.ServiceTemplate {
	return &domain.ServiceTemplate{ID: 1, DayOfWeek: int32(time.Wednesday), ServiceTypeID: estudioBiblico, DefaultStartTime: "19:00:00"}
}

func TestGenerateJanuary2025WithWorkingHoliday(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{wednesdayStudy()}
	store.holidays = []*domain.Holiday{
		{ID: 1, Date: date("2025-01-01"), Kind: domain.HolidayWorking, Description: "Año Nuevo"},
	}
	views := &recordingViews{}
	g := NewGenerator(store, views, time.Hour)

	result, err := g.Generate(context.Background(), 1, 2025)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Created)
	require.Len(t, result.Services, 5)
	for _, svc := range result.Services {
		assert.Equal(t, time.Wednesday, svc.Date.Weekday())
		if calendar.DateKey(svc.Date) == "2025-01-01" {
			assert.Equal(t, "18:00:00", svc.StartTime)
			assert.True(t, svc.IsHolidayAdjusted)
		} else {
			assert.Equal(t, "19:00:00", svc.StartTime)
			assert.False(t, svc.IsHolidayAdjusted)
		}
	}
	assert.Equal(t, []string{"2025-01"}, views.months)
}

func TestGenerateIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{
		wednesdayStudy(),
		{ID: 2, DayOfWeek: int32(time.Sunday), ServiceTypeID: ensenanza, DefaultStartTime: "11:00:00"},
		{ID: 3, DayOfWeek: int32(time.Sunday), ServiceTypeID: alabanza, DefaultStartTime: "18:00:00"},
	}
	views := &recordingViews{}
	g := NewGenerator(store, views, time.Hour)

	first, err := g.Generate(context.Background(), 3, 2025)
	require.NoError(t, err)
	// marzo de 2025: 4 miércoles y 5 domingos con dos tipos cada uno
	assert.Equal(t, 4+5*2, first.Created)
	snapshot := store.sorted()

	second, err := g.Generate(context.Background(), 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, first.Created, second.Skipped)
	assert.Equal(t, snapshot, store.sorted())

	// la segunda ejecución no crea nada, así que no invalida
	assert.Len(t, views.months, 1)
}

func TestGenerateExactlyOneServicePerDateAndType(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{
		wednesdayStudy(),
		{ID: 2, DayOfWeek: int32(time.Wednesday), ServiceTypeID: alabanza, DefaultStartTime: "20:30:00"},
	}
	// un culto ya creado a mano antes de generar
	store.services[100] = &domain.Service{ID: 100, Date: date("2025-01-08"), ServiceTypeID: estudioBiblico, StartTime: "19:30:00", Version: 1}
	g := NewGenerator(store, nil, time.Hour)

	result, err := g.Generate(context.Background(), 1, 2025)
	require.NoError(t, err)
	assert.Equal(t, 9, result.Created)
	assert.Equal(t, 1, result.Skipped)

	count := make(map[serviceKey]int)
	for _, svc := range store.sorted() {
		count[serviceKey{calendar.DateKey(svc.Date), svc.ServiceTypeID}]++
	}
	for key, n := range count {
		assert.Equal(t, 1, n, "%v", key)
	}
	assert.Equal(t, "19:30:00", store.services[100].StartTime)
}

func TestGenerateNonWorkingHolidaysAreInformational(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{wednesdayStudy()}
	store.holidays = []*domain.Holiday{
		{ID: 1, Date: date("2025-01-08"), Kind: domain.HolidayNational},
		{ID: 2, Date: date("2025-01-15"), Kind: domain.HolidayLocal},
	}
	g := NewGenerator(store, nil, time.Hour)

	result, err := g.Generate(context.Background(), 1, 2025)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Created)
	for _, svc := range result.Services {
		assert.Equal(t, "19:00:00", svc.StartTime)
		assert.False(t, svc.IsHolidayAdjusted)
	}
}

func TestGenerateCustomOffset(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{wednesdayStudy()}
	store.holidays = []*domain.Holiday{{ID: 1, Date: date("2025-01-22"), Kind: domain.HolidayWorking}}
	g := NewGenerator(store, nil, 90*time.Minute)

	result, err := g.Generate(context.Background(), 1, 2025)
	require.NoError(t, err)
	for _, svc := range result.Services {
		if calendar.DateKey(svc.Date) == "2025-01-22" {
			assert.Equal(t, "17:30:00", svc.StartTime)
		}
	}
}

func TestGenerateStopsOnPersistenceFailureKeepingPartialProgress(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{wednesdayStudy()}
	store.failCreateAt = 3
	views := &recordingViews{}
	g := NewGenerator(store, views, time.Hour)

	result, err := g.Generate(context.Background(), 1, 2025)
	require.ErrorIs(t, err, errStoreDown)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Created)
	assert.Len(t, store.services, 2)
	assert.Equal(t, []string{"2025-01"}, views.months)
}

func TestGenerateCountsOnlyActualInserts(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{wednesdayStudy()}
	store.racedKeys["2025-01-15"] = true
	g := NewGenerator(store, nil, time.Hour)

	result, err := g.Generate(context.Background(), 1, 2025)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestGenerateValidation(t *testing.T) {
	g := NewGenerator(newMemStore(), nil, time.Hour)

	_, err := g.Generate(context.Background(), 13, 2025)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = g.Generate(context.Background(), 0, 2025)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = g.Generate(context.Background(), 1, 1999)
	assert.ErrorIs(t, err, ErrInvalidYear)
}

func TestGenerateRejectsBrokenTemplate(t *testing.T) {
	store := newMemStore()
	store.templates = []*domain.ServiceTemplate{{ID: 1, DayOfWeek: 3, ServiceTypeID: 1, DefaultStartTime: "siete"}}
	g := NewGenerator(store, nil, time.Hour)

	_, err := g.Generate(context.Background(), 1, 2025)
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	store.templates = []*domain.ServiceTemplate{{ID: 1, DayOfWeek: 9, ServiceTypeID: 1, DefaultStartTime: "19:00:00"}}
	_, err = g.Generate(context.Background(), 1, 2025)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}
