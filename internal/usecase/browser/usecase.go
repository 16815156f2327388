package browser

import (
	"context"
	"errors"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/schema"
	"juvenat-admin/internal/domain/stock"
	"juvenat-admin/pkg/csvexport"

	"go.uber.org/zap"
)

var ErrConfirmationRequired = errors.New("delete requires confirmation")

type Usecase struct {
	gw       record.Gateway
	pageSize int
	log      *zap.Logger
}

func NewUsecase(gw record.Gateway, pageSize int, log *zap.Logger) *Usecase {
	if pageSize <= 0 {
		pageSize = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{gw: gw, pageSize: pageSize, log: log}
}

func (u *Usecase) load(ctx context.Context, in PageInput) ([]record.Record, int64, error) {
	if err := in.Workspace.CheckTable(in.Table); err != nil {
		return nil, 0, err
	}
	q := record.Query{Limit: u.pageSize}
	if in.Page > 0 {
		q.Offset = in.Page * u.pageSize
	}
	if t, ok := schema.Lookup(in.Table); ok {
		q.Expand = t.Expand
	}
	rows, err := u.gw.Select(ctx, in.Table, q)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.gw.Count(ctx, in.Table)
	if err != nil {
		// the page itself loaded; only the pager loses its total
		u.log.Warn("count failed", zap.String("table", in.Table), zap.Error(err))
		total = int64(q.Offset + len(rows))
	}
	return rows, total, nil
}

// view applies search, filters and sort to the loaded rows.
func view(in PageInput, rows []record.Record) ([]Column, []record.Record) {
	cols := columns(in.Table, columnOrder(in.Table, rows), in.Visible)
	out := filterRows(rows, in.Search, in.Filters)
	sortRows(out, in.SortBy, in.Desc)
	return cols, out
}

func (u *Usecase) Page(ctx context.Context, in PageInput) (*PageDTO, error) {
	rows, total, err := u.load(ctx, in)
	if err != nil {
		return nil, err
	}
	cols, shown := view(in, rows)
	dto := &PageDTO{
		Table:    in.Table,
		Label:    schema.Label(in.Table),
		Page:     max(in.Page, 0),
		PageSize: u.pageSize,
		Total:    total,
		Loaded:   len(rows),
		Columns:  cols,
		Rows:     make([]Row, 0, len(shown)),
	}
	for _, r := range shown {
		dto.Rows = append(dto.Rows, annotate(in.Table, r))
	}
	return dto, nil
}

func annotate(table string, r record.Record) Row {
	row := Row{Values: r}
	switch table {
	case stock.Table:
		q, _ := record.Number(r["quantite"])
		low := stock.IsLow(q)
		row.LowStock = &low
	case requisition.Table:
		b := requisition.BadgeFor(record.Stringify(r["etat"]))
		row.Badge = &b
	}
	return row
}

// ExportCSV renders the filtered page with its visible columns.
func (u *Usecase) ExportCSV(ctx context.Context, in PageInput) (*Export, error) {
	rows, _, err := u.load(ctx, in)
	if err != nil {
		return nil, err
	}
	cols, shown := view(in, rows)
	header := visibleNames(cols)
	lines := make([][]string, 0, len(shown))
	for _, r := range shown {
		line := make([]string, len(header))
		for i, c := range header {
			line[i] = record.Stringify(r[c])
		}
		lines = append(lines, line)
	}
	return &Export{
		Filename: csvexport.Filename(in.Table),
		Body:     csvexport.Bytes(header, lines),
		Rows:     len(lines),
	}, nil
}

// Delete removes one row by id once confirmed and returns the re-fetched page.
func (u *Usecase) Delete(ctx context.Context, in PageInput, id string, confirmed bool) (*PageDTO, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	if err := in.Workspace.CheckTable(in.Table); err != nil {
		return nil, err
	}
	if err := u.gw.Delete(ctx, in.Table, id); err != nil {
		return nil, err
	}
	u.log.Info("row deleted", zap.String("table", in.Table), zap.String("id", id))
	return u.Page(ctx, in)
}
