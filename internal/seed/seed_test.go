package seed

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	types     map[string]*domain.ServiceType
	templates []*domain.ServiceTemplate
	holidays  map[string]*domain.Holiday
	users     []*domain.User
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{
		types:    make(map[string]*domain.ServiceType),
		holidays: make(map[string]*domain.Holiday),
	}
}

func (m *memStore) GetServiceTypeByName(ctx context.Context, name string) (*domain.ServiceType, error) {
	st, ok := m.types[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

func (m *memStore) CreateServiceType(ctx context.Context, st *domain.ServiceType) error {
	m.nextID++
	st.ID = m.nextID
	m.types[st.Name] = st
	return nil
}

func (m *memStore) GetAllServiceTemplates(ctx context.Context) ([]*domain.ServiceTemplate, error) {
	return m.templates, nil
}

func (m *memStore) CreateServiceTemplate(ctx context.Context, tpl *domain.ServiceTemplate) error {
	m.nextID++
	tpl.ID = m.nextID
	m.templates = append(m.templates, tpl)
	return nil
}

func (m *memStore) UpsertHoliday(ctx context.Context, h *domain.Holiday) (domain.HolidayKind, error) {
	key := calendar.DateKey(h.Date)
	var previous domain.HolidayKind
	if old, ok := m.holidays[key]; ok {
		previous = old.Kind
	}
	m.holidays[key] = h
	return previous, nil
}

func (m *memStore) CreateUser(ctx context.Context, user *domain.User) error {
	m.users = append(m.users, user)
	return nil
}

type recordingAdjuster struct {
	applied  []string
	reverted []string
}

func (a *recordingAdjuster) ApplyHoliday(ctx context.Context, h *domain.Holiday) (int, error) {
	a.applied = append(a.applied, calendar.DateKey(h.Date))
	return 1, nil
}

func (a *recordingAdjuster) RevertHoliday(ctx context.Context, h *domain.Holiday) (int, error) {
	a.reverted = append(a.reverted, calendar.DateKey(h.Date))
	return 1, nil
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	res, err := SeedCatalog(ctx, store, DefaultCatalog)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCatalog), res.ServiceTypes)
	assert.Equal(t, len(DefaultCatalog), res.Templates)

	res, err = SeedCatalog(ctx, store, DefaultCatalog)
	require.NoError(t, err)
	assert.Zero(t, res.ServiceTypes)
	assert.Zero(t, res.Templates)
	assert.Len(t, store.templates, len(DefaultCatalog))
}

func TestReadHolidaysCSV(t *testing.T) {
	input := "date,kind,description\n" +
		"2025-01-01, working ,Año Nuevo\n" +
		"2025-01-06,national,Reyes\n"

	holidays, err := ReadHolidaysCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, holidays, 2)

	assert.Equal(t, "2025-01-01", calendar.DateKey(holidays[0].Date))
	assert.Equal(t, domain.HolidayWorking, holidays[0].Kind)
	assert.Equal(t, "Año Nuevo", holidays[0].Description)
	assert.Equal(t, domain.HolidayNational, holidays[1].Kind)
}

func TestReadHolidaysCSVWithoutDescription(t *testing.T) {
	holidays, err := ReadHolidaysCSV(strings.NewReader("date,kind,description\n2025-03-19,working,\n"))
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, domain.HolidayWorking, holidays[0].Kind)
	assert.Empty(t, holidays[0].Description)

	holidays, err = ReadHolidaysCSV(strings.NewReader("date,kind\n2025-05-01,national\n"))
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Empty(t, holidays[0].Description)
}

func TestReadHolidaysCSVErrors(t *testing.T) {
	_, err := ReadHolidaysCSV(strings.NewReader("date,description\n"))
	assert.ErrorContains(t, err, "kind")

	_, err = ReadHolidaysCSV(strings.NewReader("date,kind,description\n2025-13-01,local,Fiesta\n"))
	assert.ErrorContains(t, err, "línea 2")

	_, err = ReadHolidaysCSV(strings.NewReader("date,kind,description\n2025-03-19,bank,San José\n"))
	assert.ErrorContains(t, err, "línea 2")
}

func TestImportHolidaysAdjustsOnlyWorkingTransitions(t *testing.T) {
	store := newMemStore()
	adjuster := &recordingAdjuster{}
	ctx := context.Background()

	day := func(s string) *domain.Holiday {
		d, _ := calendar.ParseDate(s)
		return &domain.Holiday{Date: d, Description: "x"}
	}

	first := []*domain.Holiday{day("2025-01-01"), day("2025-01-06")}
	first[0].Kind = domain.HolidayWorking
	first[1].Kind = domain.HolidayNational

	res, err := ImportHolidays(ctx, store, adjuster, first)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Holidays)
	assert.Equal(t, []string{"2025-01-01"}, adjuster.applied)

	// reimportar sin cambios no mueve nada; pasar de laborable a nacional deshace el adelanto
	second := []*domain.Holiday{day("2025-01-01"), day("2025-01-06")}
	second[0].Kind = domain.HolidayNational
	second[1].Kind = domain.HolidayNational

	res, err = ImportHolidays(ctx, store, adjuster, second)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RevertedServices)
	assert.Equal(t, []string{"2025-01-01"}, adjuster.applied)
	assert.Equal(t, []string{"2025-01-01"}, adjuster.reverted)
}

func TestSeedUsers(t *testing.T) {
	store := newMemStore()

	n := SeedUsers(context.Background(), store, 3, "cambiame", "idmji.local")
	assert.Equal(t, 3, n)
	assert.Len(t, store.users, 3)
}
