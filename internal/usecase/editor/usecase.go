package editor

import (
	"context"
	"errors"
	"fmt"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/schema"
	"juvenat-admin/internal/domain/stock"
	"juvenat-admin/pkg/frenchnum"

	"go.uber.org/zap"
)

const (
	tableDecaissement = "decaissement"
	defaultDevise     = "Gourdes"
)

type Usecase struct {
	gw     record.Gateway
	stocks stock.Repository
	log    *zap.Logger
}

func NewUsecase(gw record.Gateway, stocks stock.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{gw: gw, stocks: stocks, log: log}
}

// Form describes the fields to render. With an id the row is fetched and
// its keys drive the form; without one the table template is used.
func (u *Usecase) Form(ctx context.Context, table, id string, initial record.Record, locked []string) (*FormDTO, error) {
	if !schema.Known(table) {
		u.log.Warn("no form schema for table", zap.String("table", table))
		return &FormDTO{Table: table, Label: schema.Label(table), Mode: modeFor(id), Fields: []schema.Field{}, Values: record.Record{}}, nil
	}
	if id == "" {
		values := record.Record{}
		for k, v := range initial {
			values[k] = v
		}
		if table == tableDecaissement {
			if _, ok := values["devise"]; !ok {
				values["devise"] = defaultDevise
			}
		}
		return &FormDTO{
			Table: table, Label: schema.Label(table), Mode: ModeCreate,
			Fields: schema.TemplateFor(table), Values: values, Locked: locked,
		}, nil
	}
	row, err := u.fetch(ctx, table, id)
	if err != nil {
		return nil, err
	}
	return &FormDTO{
		Table: table, Label: schema.Label(table), Mode: ModeEdit,
		Fields: schema.EditFields(table, row), Values: row,
	}, nil
}

func (u *Usecase) fetch(ctx context.Context, table, id string) (record.Record, error) {
	rows, err := u.gw.Select(ctx, table, record.Query{
		Filters: []record.Filter{{Column: "id", Value: id}},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, record.ErrNotFound
	}
	return rows[0], nil
}

// fieldSet names the columns a submission may write: the create template,
// or the fields of the stored row when editing, plus the locked fields.
func (u *Usecase) fieldSet(ctx context.Context, in SaveInput) (map[string]bool, error) {
	var fields []schema.Field
	if in.ID == "" {
		fields = schema.TemplateFor(in.Table)
	} else {
		row, err := u.fetch(ctx, in.Table, in.ID)
		if err != nil {
			return nil, err
		}
		fields = schema.EditFields(in.Table, row)
	}
	allowed := make(map[string]bool, len(fields)+len(in.Locked))
	for _, f := range fields {
		allowed[f.Name] = true
	}
	for _, k := range in.Locked {
		allowed[k] = true
	}
	return allowed, nil
}

func modeFor(id string) Mode {
	if id == "" {
		return ModeCreate
	}
	return ModeEdit
}

// Save validates, coerces and persists one form submission. Only the
// form's own fields are written. The returned record is what was written,
// with the id when known.
func (u *Usecase) Save(ctx context.Context, in SaveInput) (record.Record, error) {
	if !schema.Known(in.Table) {
		return nil, fmt.Errorf("%s: %w", in.Table, record.ErrUnknownTable)
	}
	allowed, err := u.fieldSet(ctx, in)
	if err != nil {
		return nil, err
	}
	payload, err := u.payload(in, allowed)
	if err != nil {
		return nil, err
	}

	switch {
	case in.ID != "":
		if err := u.gw.Update(ctx, in.Table, in.ID, payload); err != nil {
			return nil, err
		}
		payload["id"] = in.ID
		return payload, nil
	case in.Upsert && in.Table == stock.Table:
		return u.upsertStock(ctx, payload)
	default:
		return u.gw.Insert(ctx, in.Table, payload)
	}
}

func (u *Usecase) payload(in SaveInput, allowed map[string]bool) (record.Record, error) {
	out := record.Record{}
	var dropped []string
	for k, v := range in.Values {
		if skipOnSave(k) {
			continue
		}
		if !allowed[k] {
			dropped = append(dropped, k)
			continue
		}
		out[k] = v
	}
	if len(dropped) > 0 {
		u.log.Warn("fields outside the form ignored", zap.String("table", in.Table), zap.Strings("fields", dropped))
	}
	for _, k := range in.Locked {
		if v, ok := in.Initial[k]; ok {
			out[k] = v
		}
	}

	var bad []string
	for k, v := range out {
		c, err := schema.Coerce(k, v)
		if err != nil {
			bad = append(bad, k)
			continue
		}
		out[k] = c
	}
	if len(bad) > 0 {
		return nil, invalidFields(bad)
	}

	switch in.Table {
	case stock.Table:
		if out["institution_id"] == nil {
			out["institution_id"] = int64(stock.DefaultInstitutionID)
		}
	case tableDecaissement:
		out["montant_lettre"] = amountWords(out["montant"], out["devise"])
	}
	return out, nil
}

func skipOnSave(k string) bool {
	switch k {
	case "id", "created_at", "updated_at", "medicament_nom", "medicaments", "montant_lettre":
		return true
	}
	return false
}

func amountWords(montant, devise any) any {
	n, ok := record.Number(montant)
	if !ok {
		return nil
	}
	cur := record.Stringify(devise)
	if cur == "" {
		cur = defaultDevise
	}
	return frenchnum.ConvertAmountToFrenchWords(n, cur)
}

// upsertStock updates the row matching (medicaments_id, institution_id)
// or inserts a new one. Two concurrent inserts surface as the backend's
// unique constraint error.
func (u *Usecase) upsertStock(ctx context.Context, payload record.Record) (record.Record, error) {
	existing, err := u.stocks.FindByKey(ctx, payload["medicaments_id"], payload["institution_id"])
	switch {
	case err == nil:
		if err := u.gw.Update(ctx, stock.Table, existing.ID, payload); err != nil {
			return nil, err
		}
		payload["id"] = existing.ID
		return payload, nil
	case errors.Is(err, stock.ErrNotFound):
		return u.gw.Insert(ctx, stock.Table, payload)
	default:
		return nil, err
	}
}

// AmountInWords previews montant_lettre for a decaissement form.
func (u *Usecase) AmountInWords(montant float64, devise string) string {
	if devise == "" {
		devise = defaultDevise
	}
	return frenchnum.ConvertAmountToFrenchWords(montant, devise)
}
