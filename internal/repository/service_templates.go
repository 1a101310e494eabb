package repository

import (
	"context"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

func (r *Repository) GetAllServiceTemplates(ctx context.Context) ([]*domain.ServiceTemplate, error) {
	query := `
		SELECT
			id,
			day_of_week,
			service_type_id,
			default_start_time::text,
			created_at
		FROM service_templates
		ORDER BY day_of_week, default_start_time, id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.ServiceTemplate, 0)
	for rows.Next() {
		tpl := &domain.ServiceTemplate{}
		dst := []any{
			&tpl.ID,
			&tpl.DayOfWeek,
			&tpl.ServiceTypeID,
			&tpl.DefaultStartTime,
			&tpl.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) GetServiceTemplate(ctx context.Context, id int64) (*domain.ServiceTemplate, error) {
	query := `
		SELECT day_of_week, service_type_id, default_start_time::text, created_at
		FROM service_templates WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	tpl := &domain.ServiceTemplate{ID: id}
	dst := []any{&tpl.DayOfWeek, &tpl.ServiceTypeID, &tpl.DefaultStartTime, &tpl.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return tpl, nil
}

func (r *Repository) CreateServiceTemplate(ctx context.Context, tpl *domain.ServiceTemplate) error {
	query := `
		INSERT INTO service_templates (day_of_week, service_type_id, default_start_time)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	params := []any{tpl.DayOfWeek, tpl.ServiceTypeID, tpl.DefaultStartTime}
	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&tpl.ID, &tpl.CreatedAt)
}

// UpdateServiceTemplateTime cambia la hora por defecto. Los cultos ya generados no se tocan.
func (r *Repository) UpdateServiceTemplateTime(ctx context.Context, tpl *domain.ServiceTemplate) error {
	query := `
		UPDATE service_templates SET default_start_time = $1
		WHERE id = $2
		RETURNING day_of_week, service_type_id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	dst := []any{&tpl.DayOfWeek, &tpl.ServiceTypeID, &tpl.CreatedAt}
	return r.dbpool.QueryRowContext(ctx, query, tpl.DefaultStartTime, tpl.ID).Scan(dst...)
}

func (r *Repository) DeleteServiceTemplate(ctx context.Context, id int64) error {
	query := `
		DELETE FROM service_templates WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
