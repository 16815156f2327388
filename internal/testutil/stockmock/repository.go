package stockmock

import (
	"context"

	domain "juvenat-admin/internal/domain/stock"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	FindByKeyFn func(ctx context.Context, medicamentsID, institutionID any) (*domain.Stock, error)
}

func (m *Repo) FindByKey(ctx context.Context, medicamentsID, institutionID any) (*domain.Stock, error) {
	if m.FindByKeyFn != nil {
		return m.FindByKeyFn(ctx, medicamentsID, institutionID)
	}
	return nil, context.Canceled
}
