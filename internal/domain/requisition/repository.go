package requisition

import "context"

type Repository interface {
	// List returns every requisition, newest first.
	List(ctx context.Context) ([]Requisition, error)
	GetByID(ctx context.Context, id string) (*Requisition, error)
	Create(ctx context.Context, r *Requisition) error
	// UpdateFields persists only the given columns of one requisition.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}
