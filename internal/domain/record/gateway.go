package record

import "context"

// Filter is an equality predicate on one column.
type Filter struct {
	Column string
	Value  any
}

// Search matches rows where any of Columns contains Term, case-insensitively.
type Search struct {
	Columns []string
	Term    string
}

// Expand resolves a foreign key into a flattened display column, e.g.
// stock.medicaments_id -> medicaments.Nom AS medicament_nom.
type Expand struct {
	Table      string
	ForeignKey string
	Column     string
	As         string
}

type Query struct {
	// Columns is the projection; empty selects every column.
	Columns []string
	Expand  []Expand
	Filters []Filter
	Search  *Search
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Gateway is the hosted table store. Table names are trusted: callers
// resolve them against the schema catalog first.
type Gateway interface {
	Select(ctx context.Context, table string, q Query) ([]Record, error)
	Count(ctx context.Context, table string, filters ...Filter) (int64, error)
	Insert(ctx context.Context, table string, values Record) (Record, error)
	// Update returns ErrNotFound when no row has the given id.
	Update(ctx context.Context, table string, id any, values Record) error
	Delete(ctx context.Context, table string, id any) error
}
