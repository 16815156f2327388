package search

import (
	"fmt"
	"strings"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/schema"
	"juvenat-admin/internal/domain/stock"
)

const (
	perTableLimit = 5
	// stock rows scanned for a medicament name match
	stockScanLimit = 50
)

// source is one searchable table.
type source struct {
	table    string
	typ      string
	category string
	actions  []Action
	title    func(record.Record) string
	subtitle func(record.Record) string
}

func join(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}

func str(r record.Record, k string) string { return strings.TrimSpace(record.Stringify(r[k])) }

func shortID(r record.Record) string {
	id := r.ID()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func frDate(v any) string {
	t := record.Time(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// titleFrom joins the table's title columns, falling back to the id.
func titleFrom(table string) func(record.Record) string {
	t, _ := schema.Lookup(table)
	return func(r record.Record) string {
		parts := make([]string, 0, len(t.TitleColumns))
		for _, c := range t.TitleColumns {
			if v := str(r, c); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) == 0 {
			return r.ID()
		}
		return strings.Join(parts, " ")
	}
}

var sources = map[string]source{
	"medicaments": {
		table: "medicaments", typ: "medicament", category: "Médicaments",
		actions: []Action{{Label: "Stock", Table: "stock"}, {Label: "Sorties", Table: "sorties"}, {Label: "Voir fiche", Table: "medicaments"}},
		title: func(r record.Record) string {
			if v := str(r, "Nom"); v != "" {
				return v
			}
			return r.ID()
		},
		subtitle: func(r record.Record) string { return join(str(r, "Type"), str(r, "Nom_generique")) },
	},
	"patients": {
		table: "patients", typ: "patient", category: "Patients",
		actions:  []Action{{Label: "Dossier", Table: "patients"}, {Label: "Sorties", Table: "sorties"}},
		title:    titleFrom("patients"),
		subtitle: func(r record.Record) string { return join(str(r, "sexe"), str(r, "telephone")) },
	},
	"personnel": {
		table: "personnel", typ: "personnel", category: "Personnel",
		actions:  []Action{{Label: "Profil", Table: "personnel"}, {Label: "Timesheet", Table: "timesheet"}},
		title:    titleFrom("personnel"),
		subtitle: func(r record.Record) string { return join(str(r, "Function"), str(r, "Mail")) },
	},
	"requisition": {
		table: "requisition", typ: "requisition", category: "Réquisitions",
		actions: []Action{{Label: "Voir", Table: "requisition"}},
		title:   func(r record.Record) string { return "Réquisition " + shortID(r) },
		subtitle: func(r record.Record) string {
			etat := string(requisition.Status(str(r, "etat")).Normalize())
			return join(str(r, "personnel"), etat, frDate(r["created_at"]))
		},
	},
	"sorties": {
		table: "sorties", typ: "sortie", category: "Sorties",
		actions: []Action{{Label: "Voir", Table: "sorties"}, {Label: "Patient", Table: "patients"}},
		title: func(r record.Record) string {
			if d := frDate(r["date_sortie"]); d != "" {
				return "Sortie " + d
			}
			return "Sortie " + shortID(r)
		},
		subtitle: func(r record.Record) string {
			if s := str(r, "service"); s != "" {
				return s
			}
			return "Pharmacie"
		},
	},
	"stock": {
		table: "stock", typ: "stock", category: "Stock",
		actions: []Action{{Label: "Stock", Table: "stock"}, {Label: "Médicament", Table: "medicaments"}},
		title: func(r record.Record) string {
			if v := str(r, stock.MedicamentExpand.As); v != "" {
				return v
			}
			return "Stock #" + r.ID()
		},
		subtitle: func(r record.Record) string {
			s := stock.FromRecord(r)
			low := ""
			if s.Low() {
				low = " ⚠ Bas"
			}
			return fmt.Sprintf("Qté: %s%s · %s HTG", record.Stringify(r["quantite"]), low, record.Stringify(s.PrixVente))
		},
	},
	"timesheet": {
		table: "timesheet", typ: "timesheet", category: "Timesheet",
		title: func(r record.Record) string {
			if v := str(r, "activites"); v != "" {
				return v
			}
			return "Timesheet #" + shortID(r)
		},
		subtitle: func(r record.Record) string {
			h := str(r, "nombre_heure")
			if h != "" {
				h += "h"
			}
			return join(frDate(r["date"]), h)
		},
	},
}
