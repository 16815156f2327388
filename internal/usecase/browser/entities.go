package browser

import (
	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/workspace"
)

// PageInput selects one page of a table and the view applied to it.
// Search, Filters and Sort only ever see the loaded page.
type PageInput struct {
	Workspace workspace.Workspace
	Table     string
	Page      int
	Search    string
	// Filters maps a column to a case-insensitive substring.
	Filters map[string]string
	SortBy  string
	Desc    bool
	// Visible overrides the default column visibility when non-empty.
	Visible []string
}

type Column struct {
	Name   string `json:"name"`
	Hidden bool   `json:"hidden"`
}

type Row struct {
	Values   record.Record      `json:"values"`
	LowStock *bool              `json:"low_stock,omitempty"`
	Badge    *requisition.Badge `json:"badge,omitempty"`
}

type PageDTO struct {
	Table    string   `json:"table"`
	Label    string   `json:"label"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int64    `json:"total"`
	Loaded   int      `json:"loaded"`
	Columns  []Column `json:"columns"`
	Rows     []Row    `json:"rows"`
}

// Export is a rendered CSV download.
type Export struct {
	Filename string
	Body     []byte
	Rows     int
}
