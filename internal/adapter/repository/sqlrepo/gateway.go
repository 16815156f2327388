package sqlrepo

import (
	"context"
	"strings"
	"time"

	"juvenat-admin/internal/domain/record"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway serves remote tables straight from a SQL database through gorm,
// reading and writing rows as maps.
type Gateway struct{ db *gorm.DB }

func NewGateway(db *gorm.DB) *Gateway { return &Gateway{db: db} }

// column resolves "col" against table and "other.col" as qualified.
func column(table, name string) clause.Column {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return clause.Column{Table: name[:i], Name: name[i+1:]}
	}
	return clause.Column{Table: table, Name: name}
}

func (g *Gateway) scoped(ctx context.Context, table string, filters []record.Filter) *gorm.DB {
	tx := g.db.WithContext(ctx).Table(table)
	for _, f := range filters {
		tx = tx.Where(clause.Eq{Column: column(table, f.Column), Value: f.Value})
	}
	return tx
}

func (g *Gateway) Select(ctx context.Context, table string, q record.Query) ([]record.Record, error) {
	tx := g.scoped(ctx, table, q.Filters)

	sel := make([]string, 0, len(q.Columns)+len(q.Expand)+1)
	args := make([]any, 0, cap(sel)*2)
	if len(q.Columns) == 0 {
		sel = append(sel, "?.*")
		args = append(args, clause.Table{Name: table})
	} else {
		for _, c := range q.Columns {
			sel = append(sel, "?")
			args = append(args, column(table, c))
		}
	}
	for _, e := range q.Expand {
		sel = append(sel, "? AS ?")
		args = append(args, clause.Column{Table: e.Table, Name: e.Column}, clause.Column{Name: e.As})
		tx = tx.Joins("LEFT JOIN ? ON ? = ?",
			clause.Table{Name: e.Table},
			clause.Column{Table: e.Table, Name: "id"},
			clause.Column{Table: table, Name: e.ForeignKey},
		)
	}
	tx = tx.Select(strings.Join(sel, ", "), args...)

	if s := q.Search; s != nil && strings.TrimSpace(s.Term) != "" && len(s.Columns) > 0 {
		pattern := "%" + strings.ToLower(strings.TrimSpace(s.Term)) + "%"
		ors := make([]clause.Expression, 0, len(s.Columns))
		for _, c := range s.Columns {
			ors = append(ors, clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{column(table, c), pattern}})
		}
		tx = tx.Where(clause.Or(ors...))
	}
	if q.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{Column: column(table, q.OrderBy), Desc: q.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, normalize(r))
	}
	return out, nil
}

func (g *Gateway) Count(ctx context.Context, table string, filters ...record.Filter) (int64, error) {
	var n int64
	err := g.scoped(ctx, table, filters).Count(&n).Error
	return n, err
}

// Insert writes values as a new row. The returned record carries the id
// only when the caller supplied one.
func (g *Gateway) Insert(ctx context.Context, table string, values record.Record) (record.Record, error) {
	row := map[string]any(values.Clone())
	if err := g.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return nil, err
	}
	return record.Record(row), nil
}

func (g *Gateway) Update(ctx context.Context, table string, id any, values record.Record) error {
	if len(values) == 0 {
		return nil
	}
	res := g.db.WithContext(ctx).Table(table).
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
		Updates(map[string]any(values.Clone()))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, table string, id any) error {
	res := g.db.WithContext(ctx).Exec("DELETE FROM ? WHERE ? = ?",
		clause.Table{Name: table}, clause.Column{Name: "id"}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return record.ErrNotFound
	}
	return nil
}

// normalize turns driver byte slices into strings so rows serialize as
// text rather than base64.
func normalize(r map[string]any) record.Record {
	out := make(record.Record, len(r))
	for k, v := range r {
		switch t := v.(type) {
		case []byte:
			out[k] = string(t)
		case time.Time:
			out[k] = t.UTC()
		default:
			out[k] = v
		}
	}
	return out
}
