// Package session signs staff in and out, guards the idle lock and drives
// the shell state machine of each session.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/shell"
	"juvenat-admin/internal/domain/staff"
	"juvenat-admin/internal/domain/workspace"
	"juvenat-admin/pkg/id"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid identifier or PIN")

type Usecase struct {
	staff  staff.Repository
	store  Store
	signer *Signer
	idle   time.Duration
	log    *zap.Logger
}

func NewUsecase(staffRepo staff.Repository, store Store, signer *Signer, idle time.Duration, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{staff: staffRepo, store: store, signer: signer, idle: idle, log: log}
}

func (u *Usecase) lookup(ctx context.Context, identifier string) (*staff.Staff, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return u.staff.GetByMail(ctx, identifier)
	}
	return u.staff.GetByID(ctx, identifier)
}

// Login verifies the PIN, opens a session in the requested workspace (or
// the first accessible one) and returns its token.
func (u *Usecase) Login(ctx context.Context, in LoginInput) (*LoginDTO, error) {
	s, err := u.lookup(ctx, in.Identifier)
	if errors.Is(err, staff.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.VerifyPIN(strings.TrimSpace(in.PIN)) {
		u.log.Info("login rejected", zap.String("staff_id", s.ID))
		return nil, ErrInvalidCredentials
	}
	if !s.CanSignIn() {
		return nil, staff.ErrNoAccess
	}
	ws, err := workspace.Resolve(s.AdminSite, in.Workspace)
	if err != nil {
		return nil, err
	}

	sid := id.New()
	token, exp, err := u.signer.Sign(s.ID, sid, s.AdminSite)
	if err != nil {
		return nil, err
	}
	st := shell.New(ws)
	if err := u.store.Open(ctx, sid, s.ID, st, time.Until(exp), u.idle); err != nil {
		return nil, err
	}
	u.log.Info("login", zap.String("staff_id", s.ID), zap.String("workspace", ws.ID))
	return &LoginDTO{
		Token:     token,
		ExpiresAt: exp,
		Profile:   toProfile(s),
		StateDTO: StateDTO{
			State:       st,
			Workspace:   ws,
			Workspaces:  workspace.Accessible(s.AdminSite),
			IdleSeconds: int(u.idle / time.Second),
		},
	}, nil
}

// Authenticate resolves a bearer token to a live session.
func (u *Usecase) Authenticate(ctx context.Context, token string) (*Principal, error) {
	p, err := u.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	owner, err := u.store.StaffID(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	if owner != p.StaffID {
		return nil, ErrInvalidToken
	}
	return p, nil
}

// Touch records activity. It returns shell.ErrLocked once the idle
// deadline has passed or the session was locked.
func (u *Usecase) Touch(ctx context.Context, p *Principal) error {
	active, err := u.store.Touch(ctx, p.SessionID, u.idle)
	if err != nil {
		return err
	}
	if !active {
		return shell.ErrLocked
	}
	return nil
}

func (u *Usecase) Lock(ctx context.Context, p *Principal) (*StateDTO, error) {
	if err := u.store.Lock(ctx, p.SessionID); err != nil {
		return nil, err
	}
	return u.update(ctx, p, func(s shell.State) (shell.State, error) { return s.Lock(), nil })
}

// Unlock re-checks the PIN of the session owner.
func (u *Usecase) Unlock(ctx context.Context, p *Principal, pin string) (*StateDTO, error) {
	s, err := u.staff.GetByID(ctx, p.StaffID)
	if err != nil {
		return nil, err
	}
	if !s.VerifyPIN(strings.TrimSpace(pin)) {
		return nil, staff.ErrInvalidPIN
	}
	if err := u.store.Unlock(ctx, p.SessionID, u.idle); err != nil {
		return nil, err
	}
	return u.update(ctx, p, func(s shell.State) (shell.State, error) { return s.Unlock(), nil })
}

func (u *Usecase) Logout(ctx context.Context, p *Principal) error {
	u.log.Info("logout", zap.String("staff_id", p.StaffID))
	return u.store.Close(ctx, p.SessionID)
}

// load returns the stored shell state with Locked mirroring the idle marker.
func (u *Usecase) load(ctx context.Context, p *Principal) (shell.State, time.Duration, error) {
	st, err := u.store.LoadState(ctx, p.SessionID)
	if err != nil {
		return st, 0, err
	}
	left, err := u.store.IdleRemaining(ctx, p.SessionID)
	if err != nil {
		return st, 0, err
	}
	st.Locked = left <= 0
	return st, left, nil
}

func (u *Usecase) State(ctx context.Context, p *Principal) (*StateDTO, error) {
	st, left, err := u.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return u.view(p, st, left)
}

// Workspace is the session's current workspace.
func (u *Usecase) Workspace(ctx context.Context, p *Principal) (workspace.Workspace, error) {
	st, err := u.store.LoadState(ctx, p.SessionID)
	if err != nil {
		return workspace.Workspace{}, err
	}
	return workspace.Resolve(p.Scopes, st.Workspace)
}

func (u *Usecase) view(p *Principal, st shell.State, left time.Duration) (*StateDTO, error) {
	ws, err := workspace.Resolve(p.Scopes, st.Workspace)
	if err != nil {
		return nil, err
	}
	return &StateDTO{
		State:       st,
		Workspace:   ws,
		Workspaces:  workspace.Accessible(p.Scopes),
		IdleSeconds: int(left / time.Second),
	}, nil
}

func (u *Usecase) update(ctx context.Context, p *Principal, fn func(shell.State) (shell.State, error)) (*StateDTO, error) {
	st, left, err := u.load(ctx, p)
	if err != nil {
		return nil, err
	}
	next, err := fn(st)
	if err != nil {
		return nil, err
	}
	if err := u.store.SaveState(ctx, p.SessionID, next); err != nil {
		return nil, err
	}
	return u.view(p, next, left)
}

func (u *Usecase) Navigate(ctx context.Context, p *Principal, screen string) (*StateDTO, error) {
	return u.update(ctx, p, func(s shell.State) (shell.State, error) {
		ws, err := workspace.Resolve(p.Scopes, s.Workspace)
		if err != nil {
			return s, err
		}
		return s.Navigate(ws, screen)
	})
}

// SwitchWorkspace moves to another accessible workspace.
func (u *Usecase) SwitchWorkspace(ctx context.Context, p *Principal, wsID string) (*StateDTO, error) {
	ws, ok := workspace.Get(wsID)
	if !ok {
		return nil, workspace.ErrNoWorkspace
	}
	allowed := false
	for _, a := range workspace.Accessible(p.Scopes) {
		allowed = allowed || a.ID == ws.ID
	}
	if !allowed {
		return nil, workspace.ErrNoWorkspace
	}
	return u.update(ctx, p, func(s shell.State) (shell.State, error) { return s.SwitchWorkspace(ws) })
}

func (u *Usecase) OpenEditor(ctx context.Context, p *Principal, table, recordID string) (*StateDTO, error) {
	return u.update(ctx, p, func(s shell.State) (shell.State, error) { return s.OpenEditor(table, recordID) })
}

func (u *Usecase) OpenCreate(ctx context.Context, p *Principal, table string, initial record.Record, locked []string, upsert bool) (*StateDTO, error) {
	return u.update(ctx, p, func(s shell.State) (shell.State, error) {
		return s.OpenCreate(table, initial, locked, upsert)
	})
}

func (u *Usecase) CloseForm(ctx context.Context, p *Principal) (*StateDTO, error) {
	return u.update(ctx, p, func(s shell.State) (shell.State, error) { return s.CloseForm(), nil })
}

// Saved closes the open form after a successful save.
func (u *Usecase) Saved(ctx context.Context, p *Principal) (*StateDTO, error) {
	return u.update(ctx, p, func(s shell.State) (shell.State, error) { return s.Saved() })
}
