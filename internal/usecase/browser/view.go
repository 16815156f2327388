package browser

import (
	"sort"
	"strings"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/schema"
)

// columnOrder puts id first, then the template fields, then the other
// keys alphabetically, with created_at last.
func columnOrder(table string, rows []record.Record) []string {
	present := map[string]bool{}
	for _, r := range rows {
		for k := range r {
			present[k] = true
		}
	}
	out := make([]string, 0, len(present))
	take := func(k string) {
		if present[k] {
			out = append(out, k)
			delete(present, k)
		}
	}
	take("id")
	if t, ok := schema.Lookup(table); ok {
		for _, e := range t.Expand {
			take(e.As)
		}
	}
	for _, f := range schema.TemplateFor(table) {
		take(f.Name)
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		if k != "created_at" {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		take(k)
	}
	take("created_at")
	return out
}

func columns(table string, order, visible []string) []Column {
	hidden := map[string]bool{}
	if len(visible) > 0 {
		show := map[string]bool{}
		for _, v := range visible {
			show[v] = true
		}
		for _, c := range order {
			hidden[c] = !show[c]
		}
	} else if t, ok := schema.Lookup(table); ok {
		for _, c := range t.HiddenColumns {
			hidden[c] = true
		}
	}
	out := make([]Column, 0, len(order))
	for _, c := range order {
		out = append(out, Column{Name: c, Hidden: hidden[c]})
	}
	return out
}

func visibleNames(cols []Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !c.Hidden {
			out = append(out, c.Name)
		}
	}
	return out
}

func contains(v any, term string) bool {
	return strings.Contains(strings.ToLower(record.Stringify(v)), term)
}

// filterRows keeps rows matching the global search on any column and
// every per-column filter.
func filterRows(rows []record.Record, search string, filters map[string]string) []record.Record {
	search = strings.ToLower(strings.TrimSpace(search))
	active := map[string]string{}
	for col, term := range filters {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			active[col] = term
		}
	}
	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		if search != "" {
			hit := false
			for _, v := range r {
				if contains(v, search) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		ok := true
		for col, term := range active {
			if !contains(r[col], term) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// sortRows orders rows by col, numerically when both cells are numbers.
// Empty cells sort last in both directions.
func sortRows(rows []record.Record, col string, desc bool) {
	if col == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][col], rows[j][col]
		as, bs := record.Stringify(a), record.Stringify(b)
		if as == "" || bs == "" {
			return as != "" && bs == ""
		}
		if an, ok := record.Number(a); ok {
			if bn, ok := record.Number(b); ok {
				if desc {
					return an > bn
				}
				return an < bn
			}
		}
		c := strings.Compare(strings.ToLower(as), strings.ToLower(bs))
		if desc {
			return c > 0
		}
		return c < 0
	})
}
