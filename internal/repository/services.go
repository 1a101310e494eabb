package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

const serviceColumns = `
	id,
	date,
	service_type_id,
	start_time::text,
	is_holiday_adjusted,
	intro_reader_id,
	closing_reader_id,
	teaching_leader_id,
	testimonies_leader_id,
	created_at,
	version
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*domain.Service, error) {
	svc := &domain.Service{}
	var intro, closing, teaching, testimonies sql.NullInt64

	dst := []any{
		&svc.ID,
		&svc.Date,
		&svc.ServiceTypeID,
		&svc.StartTime,
		&svc.IsHolidayAdjusted,
		&intro,
		&closing,
		&teaching,
		&testimonies,
		&svc.CreatedAt,
		&svc.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	svc.IntroReaderID = nullableID(intro)
	svc.ClosingReaderID = nullableID(closing)
	svc.TeachingLeaderID = nullableID(teaching)
	svc.TestimoniesLeaderID = nullableID(testimonies)

	return svc, nil
}

func (r *Repository) queryServices(ctx context.Context, query string, args ...any) ([]*domain.Service, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return services, nil
}

// GetServicesBetween devuelve los cultos con fecha en [from, to], ambos incluidos.
func (r *Repository) GetServicesBetween(ctx context.Context, from, to time.Time) ([]*domain.Service, error) {
	query := `SELECT ` + serviceColumns + `
		FROM services
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, start_time, id
	`

	return r.queryServices(ctx, query, from, to)
}

func (r *Repository) GetServicesByDate(ctx context.Context, date time.Time) ([]*domain.Service, error) {
	query := `SELECT ` + serviceColumns + `
		FROM services
		WHERE date = $1
		ORDER BY start_time, id
	`

	return r.queryServices(ctx, query, date)
}

func (r *Repository) GetServiceByID(ctx context.Context, id int64) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanService(r.dbpool.QueryRowContext(ctx, query, id))
}

func (r *Repository) CreateServiceIfAbsent(ctx context.Context, svc *domain.Service) (bool, error) {
	query := `
		INSERT INTO services (date, service_type_id, start_time, is_holiday_adjusted)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, service_type_id) DO NOTHING
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{svc.Date, svc.ServiceTypeID, svc.StartTime, svc.IsHolidayAdjusted}
	err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&svc.ID, &svc.CreatedAt, &svc.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// UpdateService guarda hora, ajuste y asignaciones. Si la versión no coincide devuelve sql.ErrNoRows.
func (r *Repository) UpdateService(ctx context.Context, svc *domain.Service) error {
	query := `
		UPDATE services
		SET
			start_time = $1,
			is_holiday_adjusted = $2,
			intro_reader_id = $3,
			closing_reader_id = $4,
			teaching_leader_id = $5,
			testimonies_leader_id = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{
		svc.StartTime,
		svc.IsHolidayAdjusted,
		svc.IntroReaderID,
		svc.ClosingReaderID,
		svc.TeachingLeaderID,
		svc.TestimoniesLeaderID,
		svc.ID,
		svc.Version,
	}

	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&svc.Version)
}

// DeleteService borra el culto; sus lecturas caen en cascada.
func (r *Repository) DeleteService(ctx context.Context, id int64) error {
	query := `
		DELETE FROM services WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
