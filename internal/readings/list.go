package readings

import (
	"context"
	"strings"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListRequest struct {
	Book     string
	Page     int
	PageSize int
}

type Page struct {
	Items    []*domain.ReadingDetail `json:"items"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
}

// List devuelve el historial de lecturas, de la más reciente a la más antigua.
func (r *Registry) List(ctx context.Context, req ListRequest) (*Page, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	switch {
	case req.PageSize < 1:
		req.PageSize = DefaultPageSize
	case req.PageSize > MaxPageSize:
		req.PageSize = MaxPageSize
	}

	filter := domain.ReadingFilter{
		Book:   strings.TrimSpace(req.Book),
		Offset: (req.Page - 1) * req.PageSize,
		Limit:  req.PageSize,
	}
	items, total, err := r.store.ListReadings(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]*domain.ReadingDetail, 0)
	}

	return &Page{
		Items:    items,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
