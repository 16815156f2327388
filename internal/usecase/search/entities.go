package search

// Result types.
const (
	TypeNavigation = "navigation"
	TypeEmpty      = "empty"
)

// Action is a secondary jump offered next to a result.
type Action struct {
	Label string `json:"label"`
	Table string `json:"table"`
}

type Result struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Category string `json:"category"`
	// Target is the table opened when the result is chosen; empty for
	// the synthetic empty entry.
	Target  string   `json:"target,omitempty"`
	Actions []Action `json:"actions"`
}

type Group struct {
	Category string   `json:"category"`
	Results  []Result `json:"results"`
}

type Response struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
	Groups  []Group  `json:"groups"`
	// Failed lists tables whose search errored; their results are missing.
	Failed []string `json:"failed,omitempty"`
}

func group(results []Result) []Group {
	out := []Group{}
	idx := map[string]int{}
	for _, r := range results {
		cat := r.Category
		if cat == "" {
			cat = "Autres"
		}
		i, ok := idx[cat]
		if !ok {
			i = len(out)
			idx[cat] = i
			out = append(out, Group{Category: cat})
		}
		out[i].Results = append(out[i].Results, r)
	}
	return out
}
