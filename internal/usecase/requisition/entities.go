package requisition

import (
	"time"

	domain "juvenat-admin/internal/domain/requisition"
)

type CreateInput struct {
	Requester string
	LineItems []domain.LineItem
}

type RequisitionDTO struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Personnel string            `json:"personnel"`
	Etat      domain.Status     `json:"etat"`
	Badge     domain.Badge      `json:"badge"`
	Proforma  bool              `json:"proforma"`
	Livraison bool              `json:"livraison"`
	Posted    bool              `json:"posted"`
	LineItems []domain.LineItem `json:"articles"`
}

// TabDTO is one status tab with its badge count.
type TabDTO struct {
	Status domain.Status `json:"status"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

func toDTO(r domain.Requisition) *RequisitionDTO {
	return &RequisitionDTO{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Personnel: r.Personnel,
		Etat:      r.Status(),
		Badge:     domain.BadgeFor(r.Etat),
		Proforma:  r.Proforma,
		Livraison: r.Livraison,
		Posted:    r.Posted,
		LineItems: r.LineItems(),
	}
}
