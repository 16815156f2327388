package editor

import (
	"fmt"
	"sort"
	"strings"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/schema"
)

type Mode string

const (
	ModeEdit   Mode = "edit"
	ModeCreate Mode = "create"
)

type FormDTO struct {
	Table  string         `json:"table"`
	Label  string         `json:"label"`
	Mode   Mode           `json:"mode"`
	Fields []schema.Field `json:"fields"`
	Values record.Record  `json:"values"`
	Locked []string       `json:"locked,omitempty"`
}

type SaveInput struct {
	Table string
	// ID selects edit mode when set.
	ID     string
	Values record.Record
	// Initial holds pre-filled values; fields named in Locked always
	// take their Initial value.
	Initial record.Record
	Locked  []string
	Upsert  bool
}

// InvalidFieldsError lists the numeric fields that could not be parsed.
type InvalidFieldsError struct {
	Fields []string
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("invalid number in %s", strings.Join(e.Fields, ", "))
}

func (e *InvalidFieldsError) Unwrap() error { return schema.ErrInvalidNumber }

func invalidFields(fields []string) error {
	sort.Strings(fields)
	return &InvalidFieldsError{Fields: fields}
}
