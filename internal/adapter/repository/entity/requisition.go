// Package entity implements the typed repositories on top of the generic
// table gateway.
package entity

import (
	"context"
	"errors"
	"time"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/pkg/id"
)

type RequisitionRepository struct{ gw record.Gateway }

func NewRequisitionRepository(gw record.Gateway) *RequisitionRepository {
	return &RequisitionRepository{gw: gw}
}

var _ requisition.Repository = (*RequisitionRepository)(nil)

func (r *RequisitionRepository) List(ctx context.Context) ([]requisition.Requisition, error) {
	rows, err := r.gw.Select(ctx, requisition.Table, record.Query{OrderBy: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	out := make([]requisition.Requisition, 0, len(rows))
	for _, row := range rows {
		out = append(out, requisition.FromRecord(row))
	}
	return out, nil
}

func (r *RequisitionRepository) GetByID(ctx context.Context, reqID string) (*requisition.Requisition, error) {
	rows, err := r.gw.Select(ctx, requisition.Table, record.Query{
		Filters: []record.Filter{{Column: "id", Value: reqID}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, requisition.ErrNotFound
	}
	out := requisition.FromRecord(rows[0])
	return &out, nil
}

// Create inserts req, assigning an id and creation time when missing.
func (r *RequisitionRepository) Create(ctx context.Context, req *requisition.Requisition) error {
	if req.ID == "" {
		req.ID = id.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	_, err := r.gw.Insert(ctx, requisition.Table, record.Record{
		"id":         req.ID,
		"created_at": req.CreatedAt,
		"personnel":  req.Personnel,
		"article":    string(req.Article),
		"etat":       req.Etat,
		"proforma":   req.Proforma,
		"livraison":  req.Livraison,
		"posted":     req.Posted,
	})
	return err
}

func (r *RequisitionRepository) UpdateFields(ctx context.Context, reqID string, fields map[string]any) error {
	err := r.gw.Update(ctx, requisition.Table, reqID, record.Record(fields))
	if errors.Is(err, record.ErrNotFound) {
		return requisition.ErrNotFound
	}
	return err
}
