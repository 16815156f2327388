package requisition

import "strings"

type Status string

const (
	StatusPending  Status = "En Attente"
	StatusApproved Status = "Approuvé"
	StatusRejected Status = "Rejeté"
)

// Statuses in tab order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Normalize folds missing or unknown values into Pending.
func (s Status) Normalize() Status {
	if s.Valid() {
		return s
	}
	return StatusPending
}

// ParseStatus accepts only the three stored spellings.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Label is the tab title for the status.
func (s Status) Label() string {
	switch s.Normalize() {
	case StatusApproved:
		return "Approuvés"
	case StatusRejected:
		return "Rejetés"
	}
	return "Réquisitions"
}

type Flag string

const (
	FlagProforma  Flag = "proforma"
	FlagLivraison Flag = "livraison"
)

func ParseFlag(raw string) (Flag, error) {
	switch f := Flag(strings.ToLower(strings.TrimSpace(raw))); f {
	case FlagProforma, FlagLivraison:
		return f, nil
	}
	return "", ErrInvalidFlag
}

// Value reads the flag from a requisition.
func (f Flag) Value(r Requisition) bool {
	if f == FlagLivraison {
		return r.Livraison
	}
	return r.Proforma
}

// Set writes the flag on a requisition.
func (f Flag) Set(r *Requisition, v bool) {
	if f == FlagLivraison {
		r.Livraison = v
		return
	}
	r.Proforma = v
}

// Badge is the colored status chip.
type Badge struct {
	Status     Status `json:"status"`
	Label      string `json:"label"`
	Color      string `json:"color"`
	Background string `json:"background"`
}

var badges = map[Status]Badge{
	StatusPending:  {Status: StatusPending, Label: string(StatusPending), Color: "#f5a623", Background: "rgba(255, 183, 77, 0.15)"},
	StatusApproved: {Status: StatusApproved, Label: string(StatusApproved), Color: "#27ae60", Background: "rgba(39, 174, 96, 0.15)"},
	StatusRejected: {Status: StatusRejected, Label: string(StatusRejected), Color: "#eb5757", Background: "rgba(235, 87, 87, 0.15)"},
}

// BadgeFor renders any stored etat; unknown values get the pending badge.
func BadgeFor(etat string) Badge {
	return badges[Status(etat).Normalize()]
}
