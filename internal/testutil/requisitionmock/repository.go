package requisitionmock

import (
	"context"

	domain "juvenat-admin/internal/domain/requisition"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	ListFn         func(ctx context.Context) ([]domain.Requisition, error)
	GetByIDFn      func(ctx context.Context, id string) (*domain.Requisition, error)
	CreateFn       func(ctx context.Context, r *domain.Requisition) error
	UpdateFieldsFn func(ctx context.Context, id string, fields map[string]any) error
}

func (m *Repo) List(ctx context.Context) ([]domain.Requisition, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Requisition, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Create(ctx context.Context, r *domain.Requisition) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if m.UpdateFieldsFn != nil {
		return m.UpdateFieldsFn(ctx, id, fields)
	}
	return nil
}
