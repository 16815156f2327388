package workspace

import "errors"

var (
	ErrNoWorkspace   = errors.New("no accessible workspace")
	ErrTableNotFound = errors.New("table is not part of this workspace")
	ErrTableInactive = errors.New("table is not available yet")
)

type TableRef struct {
	Name     string `json:"name"`
	Inactive bool   `json:"inactive,omitempty"`
}

type Workspace struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Color  string     `json:"color"`
	Icon   string     `json:"icon"`
	Scope  string     `json:"-"`
	Tables []TableRef `json:"tables"`
}

// catalog order is the display order.
var catalog = []Workspace{
	{
		ID: "hcj", Name: "Hopital de Juvenat", Color: "#ff5f56", Icon: "building-2", Scope: "juvenat",
		Tables: []TableRef{
			{Name: "medicaments"}, {Name: "stock"}, {Name: "patients"},
			{Name: "ordonnances", Inactive: true}, {Name: "sorties"}, {Name: "requisition"},
		},
	},
	{
		ID: "rh", Name: "Ressources Humaines", Color: "#10b981", Icon: "users", Scope: "rh",
		Tables: []TableRef{
			{Name: "personnel"}, {Name: "timesheet"},
			{Name: "rapport_temps", Inactive: true}, {Name: "contrats", Inactive: true},
			{Name: "conges", Inactive: true}, {Name: "evaluations", Inactive: true},
			{Name: "formations", Inactive: true},
		},
	},
	{
		ID: "abc", Name: "Administration Bureau Central", Color: "#007aff", Icon: "briefcase", Scope: "bureau",
		Tables: []TableRef{
			{Name: "requisition"}, {Name: "decaissement"}, {Name: "achats"}, {Name: "paies"},
		},
	},
}

func All() []Workspace {
	out := make([]Workspace, len(catalog))
	copy(out, catalog)
	return out
}

func Get(id string) (Workspace, bool) {
	for _, w := range catalog {
		if w.ID == id {
			return w, true
		}
	}
	return Workspace{}, false
}

// Accessible filters the catalog by a staff member's admin_site scopes.
func Accessible(scopes []string) []Workspace {
	has := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		has[s] = true
	}
	out := []Workspace{}
	for _, w := range catalog {
		if has[w.Scope] {
			out = append(out, w)
		}
	}
	return out
}

// Resolve returns the requested workspace when accessible, otherwise the
// first accessible one.
func Resolve(scopes []string, requested string) (Workspace, error) {
	acc := Accessible(scopes)
	if len(acc) == 0 {
		return Workspace{}, ErrNoWorkspace
	}
	for _, w := range acc {
		if w.ID == requested {
			return w, nil
		}
	}
	return acc[0], nil
}

// ActiveTables lists navigable tables in display order.
func (w Workspace) ActiveTables() []string {
	out := make([]string, 0, len(w.Tables))
	for _, t := range w.Tables {
		if !t.Inactive {
			out = append(out, t.Name)
		}
	}
	return out
}

// CheckTable reports whether table can be opened in w.
func (w Workspace) CheckTable(table string) error {
	for _, t := range w.Tables {
		if t.Name == table {
			if t.Inactive {
				return ErrTableInactive
			}
			return nil
		}
	}
	return ErrTableNotFound
}
