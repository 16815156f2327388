package session

import (
	"context"
	"time"

	"juvenat-admin/internal/domain/shell"
	"juvenat-admin/internal/domain/staff"
	"juvenat-admin/internal/domain/workspace"
)

// Store persists session liveness and shell state.
type Store interface {
	Open(ctx context.Context, sid, staffID string, st shell.State, ttl, idle time.Duration) error
	StaffID(ctx context.Context, sid string) (string, error)
	Touch(ctx context.Context, sid string, idle time.Duration) (bool, error)
	IdleRemaining(ctx context.Context, sid string) (time.Duration, error)
	Lock(ctx context.Context, sid string) error
	Unlock(ctx context.Context, sid string, idle time.Duration) error
	LoadState(ctx context.Context, sid string) (shell.State, error)
	SaveState(ctx context.Context, sid string, st shell.State) error
	Close(ctx context.Context, sid string) error
}

type LoginInput struct {
	// Identifier is a staff id or e-mail address.
	Identifier string
	PIN        string
	Workspace  string
}

type Profile struct {
	ID       string   `json:"id"`
	Nom      string   `json:"Nom"`
	Prenom   string   `json:"Prenom"`
	FullName string   `json:"full_name"`
	Role     string   `json:"role,omitempty"`
	Function string   `json:"Function,omitempty"`
	Service  string   `json:"service,omitempty"`
	Mail     string   `json:"Mail,omitempty"`
	Scopes   []string `json:"admin_site"`
}

func toProfile(s *staff.Staff) Profile {
	return Profile{
		ID: s.ID, Nom: s.Nom, Prenom: s.Prenom, FullName: s.FullName(),
		Role: s.Role, Function: s.Function, Service: s.Service, Mail: s.Mail,
		Scopes: []string(s.AdminSite),
	}
}

type LoginDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
	StateDTO
}

type StateDTO struct {
	State      shell.State           `json:"state"`
	Workspace  workspace.Workspace   `json:"workspace"`
	Workspaces []workspace.Workspace `json:"workspaces"`
	// IdleSeconds is the time left before the session locks.
	IdleSeconds int `json:"idle_seconds"`
}
