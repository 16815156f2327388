package staffmock

import (
	"context"

	domain "juvenat-admin/internal/domain/staff"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByIDFn    func(ctx context.Context, id string) (*domain.Staff, error)
	GetByMailFn  func(ctx context.Context, mail string) (*domain.Staff, error)
	RequestersFn func(ctx context.Context) ([]domain.Requester, error)
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByMail(ctx context.Context, mail string) (*domain.Staff, error) {
	if m.GetByMailFn != nil {
		return m.GetByMailFn(ctx, mail)
	}
	return nil, context.Canceled
}

func (m *Repo) Requesters(ctx context.Context) ([]domain.Requester, error) {
	if m.RequestersFn != nil {
		return m.RequestersFn(ctx)
	}
	return nil, context.Canceled
}
