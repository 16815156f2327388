package gatewaymock

import (
	"context"

	"juvenat-admin/internal/domain/record"
)

var _ record.Gateway = (*Gateway)(nil)

// Gateway is a function-backed record.Gateway. Unset readers fail with
// context.Canceled; unset writers succeed.
type Gateway struct {
	SelectFn func(ctx context.Context, table string, q record.Query) ([]record.Record, error)
	CountFn  func(ctx context.Context, table string, filters ...record.Filter) (int64, error)
	InsertFn func(ctx context.Context, table string, values record.Record) (record.Record, error)
	UpdateFn func(ctx context.Context, table string, id any, values record.Record) error
	DeleteFn func(ctx context.Context, table string, id any) error
}

func (m *Gateway) Select(ctx context.Context, table string, q record.Query) ([]record.Record, error) {
	if m.SelectFn != nil {
		return m.SelectFn(ctx, table, q)
	}
	return nil, context.Canceled
}

func (m *Gateway) Count(ctx context.Context, table string, filters ...record.Filter) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, table, filters...)
	}
	return 0, context.Canceled
}

func (m *Gateway) Insert(ctx context.Context, table string, values record.Record) (record.Record, error) {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, table, values)
	}
	return values.Clone(), nil
}

func (m *Gateway) Update(ctx context.Context, table string, id any, values record.Record) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, table, id, values)
	}
	return nil
}

func (m *Gateway) Delete(ctx context.Context, table string, id any) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, table, id)
	}
	return nil
}
