package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

func (r *Repository) GetHolidaysBetween(ctx context.Context, from, to time.Time) ([]*domain.Holiday, error) {
	query := `
		SELECT id, date, kind, description, created_at
		FROM holidays
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]*domain.Holiday, 0)
	for rows.Next() {
		h := &domain.Holiday{}
		if err := rows.Scan(&h.ID, &h.Date, &h.Kind, &h.Description, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

func (r *Repository) GetHolidayByID(ctx context.Context, id int64) (*domain.Holiday, error) {
	query := `SELECT date, kind, description, created_at FROM holidays WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	h := &domain.Holiday{ID: id}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&h.Date, &h.Kind, &h.Description, &h.CreatedAt); err != nil {
		return nil, err
	}

	return h, nil
}

func (r *Repository) CreateHoliday(ctx context.Context, h *domain.Holiday) error {
	query := `
		INSERT INTO holidays (date, kind, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, h.Date, h.Kind, h.Description).Scan(&h.ID, &h.CreatedAt)
}

// UpsertHoliday crea o sobrescribe el festivo de esa fecha. Devuelve el tipo que tenía antes, vacío
// si la fecha era nueva.
func (r *Repository) UpsertHoliday(ctx context.Context, h *domain.Holiday) (domain.HolidayKind, error) {
	var previous domain.HolidayKind

	err := r.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var kind sql.NullString
		err := tx.QueryRowContext(ctx, `SELECT kind FROM holidays WHERE date = $1 FOR UPDATE`, h.Date).Scan(&kind)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		previous = domain.HolidayKind(kind.String)

		query := `
			INSERT INTO holidays (date, kind, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (date) DO UPDATE SET kind = EXCLUDED.kind, description = EXCLUDED.description
			RETURNING id, created_at
		`
		return tx.QueryRowContext(ctx, query, h.Date, h.Kind, h.Description).Scan(&h.ID, &h.CreatedAt)
	})
	if err != nil {
		return "", err
	}

	return previous, nil
}

func (r *Repository) DeleteHoliday(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	return err
}
