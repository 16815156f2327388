package entity

import (
	"context"
	"strings"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/staff"
)

type StaffRepository struct{ gw record.Gateway }

func NewStaffRepository(gw record.Gateway) *StaffRepository { return &StaffRepository{gw: gw} }

var _ staff.Repository = (*StaffRepository)(nil)

func (r *StaffRepository) first(ctx context.Context, f record.Filter) (*staff.Staff, error) {
	rows, err := r.gw.Select(ctx, staff.Table, record.Query{Filters: []record.Filter{f}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, staff.ErrNotFound
	}
	out := staff.FromRecord(rows[0])
	return &out, nil
}

func (r *StaffRepository) GetByID(ctx context.Context, staffID string) (*staff.Staff, error) {
	return r.first(ctx, record.Filter{Column: "id", Value: strings.TrimSpace(staffID)})
}

func (r *StaffRepository) GetByMail(ctx context.Context, mail string) (*staff.Staff, error) {
	return r.first(ctx, record.Filter{Column: "Mail", Value: strings.TrimSpace(mail)})
}

func (r *StaffRepository) Requesters(ctx context.Context) ([]staff.Requester, error) {
	rows, err := r.gw.Select(ctx, staff.Table, record.Query{
		Columns: []string{"id", "Nom", "Prenom"},
		OrderBy: "Nom",
	})
	if err != nil {
		return nil, err
	}
	out := make([]staff.Requester, 0, len(rows))
	for _, row := range rows {
		out = append(out, staff.Requester{
			ID:     row.ID(),
			Nom:    record.Stringify(row["Nom"]),
			Prenom: record.Stringify(row["Prenom"]),
		})
	}
	return out, nil
}
