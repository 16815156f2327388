package requisition

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"juvenat-admin/internal/domain/record"

	"gorm.io/datatypes"
)

const Table = "requisition"

var (
	ErrNotFound             = errors.New("requisition not found")
	ErrInvalidStatus        = errors.New("invalid requisition status")
	ErrInvalidFlag          = errors.New("invalid requisition flag")
	ErrFlagsRequireApproval = errors.New("proforma and livraison can only change on an approved requisition")
	ErrMissingRequester     = errors.New("a requester must be selected")
	ErrNoLineItems          = errors.New("at least one article is required")
)

// Table: requisition
type Requisition struct {
	ID        string         `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Personnel string         `gorm:"column:personnel;type:varchar(64);index" json:"personnel"`
	Article   datatypes.JSON `gorm:"column:article" json:"article"`
	Etat      string         `gorm:"column:etat;type:varchar(16);index" json:"etat"`
	Proforma  bool           `gorm:"column:proforma;not null;default:false" json:"proforma"`
	Livraison bool           `gorm:"column:livraison;not null;default:false" json:"livraison"`
	Posted    bool           `gorm:"column:posted;not null;default:false" json:"posted"`
}

func (Requisition) TableName() string { return Table }

// Status is the etat with unknown values folded into Pending.
func (r Requisition) Status() Status { return Status(r.Etat).Normalize() }

// LineItems parses the article column; it never fails.
func (r Requisition) LineItems() []LineItem { return ParseLineItems(r.Article) }

// Matches reports whether term appears in the requester, the id or the
// serialized articles, ignoring case.
func (r Requisition) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Personnel), term) ||
		strings.Contains(strings.ToLower(r.ID), term) ||
		strings.Contains(strings.ToLower(string(r.Article)), term)
}

// FromRecord maps a gateway row. The article cell may arrive as JSON text,
// a decoded array or a decoded object depending on the backend.
func FromRecord(rec record.Record) Requisition {
	return Requisition{
		ID:        rec.ID(),
		CreatedAt: record.Time(rec["created_at"]),
		Personnel: record.Stringify(rec["personnel"]),
		Article:   rawArticle(rec["article"]),
		Etat:      record.Stringify(rec["etat"]),
		Proforma:  record.Bool(rec["proforma"]),
		Livraison: record.Bool(rec["livraison"]),
		Posted:    record.Bool(rec["posted"]),
	}
}

func rawArticle(v any) datatypes.JSON {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return textArticle([]byte(t))
	case []byte:
		return textArticle(t)
	case datatypes.JSON:
		return t
	case json.RawMessage:
		return datatypes.JSON(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		return datatypes.JSON(b)
	}
}

func textArticle(b []byte) datatypes.JSON {
	if json.Valid(b) {
		return datatypes.JSON(append([]byte(nil), b...))
	}
	// keep legacy non-JSON text searchable; it parses to no items
	q, _ := json.Marshal(string(b))
	return datatypes.JSON(q)
}
