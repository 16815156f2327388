package requisition

import (
	"context"
	"strings"

	domain "juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/staff"

	"go.uber.org/zap"
)

type Usecase struct {
	repo  domain.Repository
	staff staff.Repository
	log   *zap.Logger
}

func NewUsecase(repo domain.Repository, staffRepo staff.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, staff: staffRepo, log: log}
}

// ListByStatus returns the requisitions shown under one tab, newest first.
// Rows with a missing or unknown etat belong to the pending tab.
func (u *Usecase) ListByStatus(ctx context.Context, status domain.Status, search string) ([]*RequisitionDTO, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	all, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*RequisitionDTO, 0, len(all))
	for _, r := range all {
		if r.Status() == status && r.Matches(search) {
			out = append(out, toDTO(r))
		}
	}
	return out, nil
}

func (u *Usecase) Counts(ctx context.Context) ([]TabDTO, error) {
	all, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, r := range all {
		counts[r.Status()]++
	}
	tabs := make([]TabDTO, 0, len(domain.Statuses))
	for _, s := range domain.Statuses {
		tabs = append(tabs, TabDTO{Status: s, Label: s.Label(), Count: counts[s]})
	}
	return tabs, nil
}

func (u *Usecase) Get(ctx context.Context, id string) (*RequisitionDTO, error) {
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(*r), nil
}

// LineItems returns the parsed articles of one requisition.
func (u *Usecase) LineItems(ctx context.Context, id string) ([]domain.LineItem, error) {
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.LineItems(), nil
}

// SetStatus moves a requisition to any of the three states. Only etat is
// written; flags are left as they are.
func (u *Usecase) SetStatus(ctx context.Context, id, raw string) (*RequisitionDTO, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.repo.UpdateFields(ctx, r.ID, map[string]any{"etat": string(status)}); err != nil {
		u.log.Warn("set status failed", zap.String("id", r.ID), zap.String("etat", string(status)), zap.Error(err))
		return nil, err
	}
	r.Etat = string(status)
	return toDTO(*r), nil
}

// ToggleFlag flips proforma or livraison on an approved requisition.
func (u *Usecase) ToggleFlag(ctx context.Context, id, rawFlag string) (*RequisitionDTO, error) {
	flag, err := domain.ParseFlag(rawFlag)
	if err != nil {
		return nil, err
	}
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status() != domain.StatusApproved {
		return nil, domain.ErrFlagsRequireApproval
	}
	next := !flag.Value(*r)
	if err := u.repo.UpdateFields(ctx, r.ID, map[string]any{string(flag): next}); err != nil {
		u.log.Warn("toggle flag failed", zap.String("id", r.ID), zap.String("flag", string(flag)), zap.Error(err))
		return nil, err
	}
	flag.Set(r, next)
	return toDTO(*r), nil
}

// Create submits a new pending requisition. Items without a name are
// dropped before the empty check.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*RequisitionDTO, error) {
	requester := strings.TrimSpace(in.Requester)
	if requester == "" {
		return nil, domain.ErrMissingRequester
	}
	article, kept, err := domain.EncodeLineItems(in.LineItems)
	if err != nil {
		return nil, err
	}
	if len(kept) == 0 {
		return nil, domain.ErrNoLineItems
	}
	r := &domain.Requisition{
		Personnel: requester,
		Article:   article,
		Etat:      string(domain.StatusPending),
	}
	if err := u.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	u.log.Info("requisition created", zap.String("id", r.ID), zap.Int("items", len(kept)))
	return toDTO(*r), nil
}

// Requesters feeds the requester picker, ordered by Nom.
func (u *Usecase) Requesters(ctx context.Context) ([]staff.Requester, error) {
	return u.staff.Requesters(ctx)
}
