package repository

import (
	"context"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

func (r *Repository) GetAllServiceTypes(ctx context.Context) ([]*domain.ServiceType, error) {
	query := `SELECT id, name, description, created_at FROM service_types ORDER BY id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]*domain.ServiceType, 0)
	for rows.Next() {
		st := &domain.ServiceType{}
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types, nil
}

func (r *Repository) GetServiceTypeByID(ctx context.Context, id int64) (*domain.ServiceType, error) {
	query := `SELECT name, description, created_at FROM service_types WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	st := &domain.ServiceType{ID: id}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&st.Name, &st.Description, &st.CreatedAt); err != nil {
		return nil, err
	}

	return st, nil
}

func (r *Repository) GetServiceTypeByName(ctx context.Context, name string) (*domain.ServiceType, error) {
	query := `SELECT id, description, created_at FROM service_types WHERE name = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	st := &domain.ServiceType{Name: name}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&st.ID, &st.Description, &st.CreatedAt); err != nil {
		return nil, err
	}

	return st, nil
}

func (r *Repository) CreateServiceType(ctx context.Context, st *domain.ServiceType) error {
	query := `
		INSERT INTO service_types (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, st.Name, st.Description).Scan(&st.ID, &st.CreatedAt)
}

func (r *Repository) UpdateServiceType(ctx context.Context, st *domain.ServiceType) error {
	query := `
		UPDATE service_types SET name = $1, description = $2
		WHERE id = $3
		RETURNING created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, st.Name, st.Description, st.ID).Scan(&st.CreatedAt)
}

func (r *Repository) DeleteServiceType(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM service_types WHERE id = $1`, id)
	return err
}
