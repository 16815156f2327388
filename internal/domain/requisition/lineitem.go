package requisition

import (
	"encoding/json"
	"math"
	"strings"

	"juvenat-admin/internal/domain/record"

	"gorm.io/datatypes"
)

// LineItem is one requested article. Legacy rows spell the fields several
// ways; normalizeItem folds them into this shape once, at parse time.
type LineItem struct {
	Nom          string   `json:"nom"`
	Quantite     int      `json:"quantite"`
	Presentation string   `json:"presentation,omitempty"`
	Description  string   `json:"description,omitempty"`
	Prix         *float64 `json:"prix,omitempty"`
}

var (
	nameKeys     = []string{"nom", "name", "Nom"}
	quantityKeys = []string{"quantite", "qty", "quantity"}
	priceKeys    = []string{"prix", "price", "prix_unitaire"}
)

// ParseLineItems decodes the article column. It accepts a JSON array, a
// single object, or either of those double-encoded as a JSON string, and
// returns an empty slice for anything else.
func ParseLineItems(raw []byte) []LineItem {
	out := []LineItem{}
	if len(raw) == 0 {
		return out
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return out
	}
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return out
		}
	}
	switch t := v.(type) {
	case []any:
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				out = append(out, normalizeItem(m))
			}
		}
	case map[string]any:
		out = append(out, normalizeItem(t))
	}
	return out
}

func normalizeItem(m map[string]any) LineItem {
	it := LineItem{
		Nom:          strings.TrimSpace(record.Stringify(first(m, nameKeys))),
		Quantite:     1,
		Presentation: record.Stringify(m["presentation"]),
		Description:  record.Stringify(m["description"]),
	}
	if q, ok := record.Number(first(m, quantityKeys)); ok && !math.IsNaN(q) {
		it.Quantite = int(q)
	}
	if p, ok := record.Number(first(m, priceKeys)); ok {
		it.Prix = &p
	}
	return it
}

func first(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// EncodeLineItems serializes items for the article column, skipping
// entries without a name.
func EncodeLineItems(items []LineItem) (datatypes.JSON, []LineItem, error) {
	kept := make([]LineItem, 0, len(items))
	for _, it := range items {
		it.Nom = strings.TrimSpace(it.Nom)
		if it.Nom == "" {
			continue
		}
		if it.Quantite <= 0 {
			it.Quantite = 1
		}
		kept = append(kept, it)
	}
	b, err := json.Marshal(kept)
	if err != nil {
		return nil, nil, err
	}
	return datatypes.JSON(b), kept, nil
}
