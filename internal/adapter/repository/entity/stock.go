package entity

import (
	"context"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/stock"
)

type StockRepository struct{ gw record.Gateway }

func NewStockRepository(gw record.Gateway) *StockRepository { return &StockRepository{gw: gw} }

var _ stock.Repository = (*StockRepository)(nil)

func (r *StockRepository) FindByKey(ctx context.Context, medicamentsID, institutionID any) (*stock.Stock, error) {
	rows, err := r.gw.Select(ctx, stock.Table, record.Query{
		Filters: []record.Filter{
			{Column: "medicaments_id", Value: medicamentsID},
			{Column: "institution_id", Value: institutionID},
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, stock.ErrNotFound
	}
	out := stock.FromRecord(rows[0])
	return &out, nil
}
