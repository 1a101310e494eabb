//go:build integration

// Estas pruebas necesitan un postgres vacío: TEST_DATABASE_DSN=... go test -tags integration ./internal/repository/
package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/config"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type fixture struct {
	repo     *Repository
	reader   int64
	services map[string]int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN no definido")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `TRUNCATE scripture_readings, services, service_templates, service_types, holidays, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5
	repo := NewRepository(cfg, db)

	reader := &domain.User{Username: "ana.ruiz", PasswordHash: "x", FullName: "Ana Ruiz", Email: "ana@idmji.local", Role: domain.RoleMember}
	require.NoError(t, repo.CreateUser(ctx, reader))

	st := &domain.ServiceType{Name: "Culto Dominical"}
	require.NoError(t, repo.CreateServiceType(ctx, st))

	f := &fixture{repo: repo, reader: reader.ID, services: make(map[string]int64)}
	for _, day := range []string{"2025-01-05", "2025-01-12", "2025-01-19"} {
		date, err := calendar.ParseDate(day)
		require.NoError(t, err)
		svc := &domain.Service{Date: date, ServiceTypeID: st.ID, StartTime: "11:00:00"}
		inserted, err := repo.CreateServiceIfAbsent(ctx, svc)
		require.NoError(t, err)
		require.True(t, inserted)
		f.services[day] = svc.ID
	}
	return f
}

func (f *fixture) write(t *testing.T, day string, role domain.ReadingRole, c domain.Citation, original *int64) *domain.ScriptureReading {
	t.Helper()
	r := &domain.ScriptureReading{
		Citation:          c,
		ServiceID:         f.services[day],
		Role:              role,
		ReaderID:          f.reader,
		IsRepeat:          original != nil,
		OriginalReadingID: original,
	}
	require.NoError(t, f.repo.UpsertReading(context.Background(), r))
	return r
}

func (f *fixture) get(t *testing.T, id int64) *domain.ReadingDetail {
	t.Helper()
	d, err := f.repo.GetReading(context.Background(), id)
	require.NoError(t, err)
	return d
}

var juan316 = domain.Citation{Book: "Juan", StartChapter: 3, StartVerse: 16, EndChapter: 3, EndVerse: 16}

func TestUpsertReadingRejectsSecondOriginal(t *testing.T) {
	f := newFixture(t)
	f.write(t, "2025-01-05", domain.ReadingIntroduction, juan316, nil)

	err := f.repo.UpsertReading(context.Background(), &domain.ScriptureReading{
		Citation:  juan316,
		ServiceID: f.services["2025-01-12"],
		Role:      domain.ReadingClosing,
		ReaderID:  f.reader,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateCitation)
}

func TestDeleteOriginalPromotesOldestRepeatInDatabase(t *testing.T) {
	f := newFixture(t)
	original := f.write(t, "2025-01-05", domain.ReadingIntroduction, juan316, nil)
	late := f.write(t, "2025-01-19", domain.ReadingIntroduction, juan316, &original.ID)
	early := f.write(t, "2025-01-12", domain.ReadingClosing, juan316, &original.ID)

	require.NoError(t, f.repo.DeleteReading(context.Background(), original.ID))

	heir := f.get(t, early.ID)
	assert.False(t, heir.IsRepeat)
	assert.Nil(t, heir.OriginalReadingID)

	other := f.get(t, late.ID)
	assert.True(t, other.IsRepeat)
	require.NotNil(t, other.OriginalReadingID)
	assert.Equal(t, early.ID, *other.OriginalReadingID)

	found, err := f.repo.FindOriginalReading(context.Background(), juan316)
	require.NoError(t, err)
	assert.Equal(t, early.ID, found.ID)
}

func TestChangingOriginalCitationPromotesRepeat(t *testing.T) {
	f := newFixture(t)
	original := f.write(t, "2025-01-05", domain.ReadingIntroduction, juan316, nil)
	repeat := f.write(t, "2025-01-12", domain.ReadingIntroduction, juan316, &original.ID)

	juan317 := juan316
	juan317.StartVerse, juan317.EndVerse = 17, 17
	replaced := f.write(t, "2025-01-05", domain.ReadingIntroduction, juan317, nil)
	assert.Equal(t, original.ID, replaced.ID)
	assert.Equal(t, juan317, replaced.Citation)

	heir := f.get(t, repeat.ID)
	assert.False(t, heir.IsRepeat)
	assert.Nil(t, heir.OriginalReadingID)
}

func TestDeleteRepeatKeepsOriginal(t *testing.T) {
	f := newFixture(t)
	original := f.write(t, "2025-01-05", domain.ReadingIntroduction, juan316, nil)
	repeat := f.write(t, "2025-01-12", domain.ReadingIntroduction, juan316, &original.ID)

	require.NoError(t, f.repo.DeleteReading(context.Background(), repeat.ID))

	kept := f.get(t, original.ID)
	assert.False(t, kept.IsRepeat)

	_, err := f.repo.GetReading(context.Background(), repeat.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
