// Package schema describes the remote tables the admin front-end knows
// about: display labels, create-form templates, searchable columns and
// numeric coercion rules.
package schema

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/stock"
)

var ErrInvalidNumber = errors.New("invalid number")

type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindTextarea Kind = "textarea"
)

// Field describes one form input.
type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Options  []string `json:"options,omitempty"`
	ReadOnly bool     `json:"read_only,omitempty"`
}

type Table struct {
	Name  string
	Label string
	// Template is the ordered create form; nil for tables without one.
	Template []Field
	// SearchColumns are matched by the quick search, in order.
	SearchColumns []string
	// TitleColumns build a result title; the first non-empty wins.
	TitleColumns []string
	Expand       []record.Expand
	// HiddenColumns are hidden by default in the table browser.
	HiddenColumns []string
}

var MedicamentTypes = []string{
	"Comprimé",
	"Goutte",
	"Matériel médical",
	"Sirop",
	"Soluté",
	"Solution injectable",
	"lotion",
}

var Devises = []string{"Gourdes", "Dollars américain"}

func text(name string) Field   { return Field{Name: name, Label: name, Kind: KindText} }
func number(name string) Field { return Field{Name: name, Label: name, Kind: KindNumber} }
func date(name string) Field   { return Field{Name: name, Label: name, Kind: KindDate} }

var tables = map[string]Table{
	"medicaments": {
		Name: "medicaments", Label: "Médicaments",
		Template: []Field{
			text("Nom"),
			{Name: "description", Label: "description", Kind: KindTextarea},
			{Name: "Type", Label: "Type", Kind: KindSelect, Options: MedicamentTypes},
			text("barcode"),
			text("Nom_generique"),
			text("Pharmacie"),
		},
		SearchColumns: []string{"Nom", "Nom_generique", "description"},
		TitleColumns:  []string{"Nom", "Nom_generique"},
	},
	"stock": {
		Name: "stock", Label: "Stock",
		Template:     []Field{number("medicaments_id"), number("institution_id"), number("quantite"), number("prix_vente")},
		Expand:       []record.Expand{stock.MedicamentExpand},
		TitleColumns: []string{"medicament_nom"},
	},
	"patients": {
		Name: "patients", Label: "Patients",
		Template: []Field{
			text("prenom"), text("nom"), date("date_naissance"),
			{Name: "sexe", Label: "sexe", Kind: KindSelect, Options: []string{"M", "F"}},
			text("telephone"),
		},
		SearchColumns: []string{"nom", "prenom", "telephone"},
		TitleColumns:  []string{"prenom", "nom"},
	},
	"personnel": {
		Name: "personnel", Label: "Personnel",
		Template: []Field{
			text("id"), text("Nom"), text("Prenom"), text("role"), text("Function"),
			text("service"), text("Mail"), text("Phone"),
		},
		SearchColumns: []string{"Nom", "Prenom", "Mail", "Function"},
		TitleColumns:  []string{"Prenom", "Nom"},
	},
	"timesheet": {
		Name: "timesheet", Label: "Timesheet",
		Template: []Field{
			text("id_employe"),
			{Name: "activites", Label: "activites", Kind: KindTextarea},
			date("date"),
			number("nombre_heure"),
		},
		SearchColumns: []string{"activites"},
		TitleColumns:  []string{"activites"},
	},
	"requisition": {
		Name: "requisition", Label: "Réquisitions",
		SearchColumns: []string{"personnel", "etat"},
		TitleColumns:  []string{"personnel"},
		HiddenColumns: []string{"posted", "article"},
	},
	"sorties": {
		Name: "sorties", Label: "Sorties",
		SearchColumns: []string{"service"},
		TitleColumns:  []string{"service"},
	},
	"decaissement": {
		Name: "decaissement", Label: "Décaissement",
		Template: []Field{
			text("beneficiaire"),
			{Name: "motif", Label: "motif", Kind: KindTextarea},
			number("montant"),
			{Name: "devise", Label: "devise", Kind: KindSelect, Options: Devises},
			{Name: "montant_lettre", Label: "montant_lettre", Kind: KindText, ReadOnly: true},
			date("date"),
		},
	},
	"ordonnances":   {Name: "ordonnances", Label: "Ordonnances"},
	"rapport_temps": {Name: "rapport_temps", Label: "Rapport de temps"},
	"contrats":      {Name: "contrats", Label: "Contrats"},
	"conges":        {Name: "conges", Label: "Congés"},
	"evaluations":   {Name: "evaluations", Label: "Évaluations"},
	"formations":    {Name: "formations", Label: "Formations"},
	"achats":        {Name: "achats", Label: "Achats"},
	"paies":         {Name: "paies", Label: "Paies"},
}

// Lookup returns the descriptor of a known table.
func Lookup(name string) (Table, bool) {
	t, ok := tables[name]
	return t, ok
}

// Known reports whether name is one of the catalogued tables.
func Known(name string) bool {
	_, ok := tables[name]
	return ok
}

// Label is the display name of a table; unknown names are capitalized.
func Label(name string) string {
	if t, ok := tables[name]; ok && t.Label != "" {
		return t.Label
	}
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// TemplateFor is the create form of a table. Unknown tables yield an
// empty form.
func TemplateFor(name string) []Field {
	t, ok := tables[name]
	if !ok || len(t.Template) == 0 {
		return []Field{}
	}
	out := make([]Field, len(t.Template))
	copy(out, t.Template)
	return out
}

var editExcluded = map[string]struct{}{
	"id":             {},
	"created_at":     {},
	"updated_at":     {},
	"medicament_nom": {},
	"medicaments":    {},
}

// EditFields derives the edit form from an existing row. Template fields
// keep their declared order and kind; remaining keys follow alphabetically
// as text inputs.
func EditFields(table string, rec record.Record) []Field {
	out := []Field{}
	seen := map[string]bool{}
	for _, f := range TemplateFor(table) {
		if _, skip := editExcluded[f.Name]; skip {
			continue
		}
		if _, ok := rec[f.Name]; ok {
			out = append(out, f)
			seen[f.Name] = true
		}
	}
	rest := make([]string, 0, len(rec))
	for k := range rec {
		if _, skip := editExcluded[k]; skip || seen[k] {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	for _, k := range rest {
		kind := KindText
		if IsNumeric(k) {
			kind = KindNumber
		}
		out = append(out, Field{Name: k, Label: k, Kind: kind})
	}
	return out
}

var numericFields = map[string]struct{}{
	"quantite":       {},
	"prix_vente":     {},
	"nombre_heure":   {},
	"institution_id": {},
	"medicaments_id": {},
	"montant":        {},
}

func IsNumeric(field string) bool {
	_, ok := numericFields[field]
	return ok
}

// MaxNumber bounds numeric fields; amounts at or beyond it cannot be
// spelled out with their cents.
const MaxNumber = 1e13

// Coerce converts a submitted value for field. Numeric fields turn "" into
// nil, decimal text into float64 and other text into int64; everything
// else passes through untouched. Numbers outside ±MaxNumber are rejected.
func Coerce(field string, v any) (any, error) {
	if !IsNumeric(field) {
		return v, nil
	}
	invalid := fmt.Errorf("%s: %w", field, ErrInvalidNumber)
	var out any
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int:
		out = int64(t)
	case int32:
		out = int64(t)
	case int64:
		out = t
	case float64:
		if math.IsNaN(t) || math.Abs(t) >= MaxNumber {
			return nil, invalid
		}
		if t == math.Trunc(t) {
			return int64(t), nil
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		if strings.Contains(s, ".") {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, invalid
			}
			out = f
		} else {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, invalid
			}
			out = n
		}
	default:
		return nil, invalid
	}
	if f, _ := record.Number(out); math.IsNaN(f) || math.Abs(f) >= MaxNumber {
		return nil, invalid
	}
	return out, nil
}
