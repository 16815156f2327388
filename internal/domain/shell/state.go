// Package shell holds the navigation state of one signed-in session. Every
// change goes through a named transition so screen logic stays testable.
package shell

import (
	"errors"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/workspace"
)

const ScreenDashboard = "dashboard"

var (
	ErrLocked          = errors.New("session is locked")
	ErrNoForm          = errors.New("no form is open")
	ErrFormTarget      = errors.New("form table is required")
	ErrSessionNotFound = errors.New("session not found or expired")
)

type FormMode string

const (
	FormEdit   FormMode = "edit"
	FormCreate FormMode = "create"
)

type FormTarget struct {
	Table    string        `json:"table"`
	Mode     FormMode      `json:"mode"`
	RecordID string        `json:"record_id,omitempty"`
	Initial  record.Record `json:"initial,omitempty"`
	Locked   []string      `json:"locked,omitempty"`
	Upsert   bool          `json:"upsert,omitempty"`
}

type State struct {
	Workspace string      `json:"workspace"`
	Screen    string      `json:"screen"`
	Locked    bool        `json:"locked"`
	Form      *FormTarget `json:"form,omitempty"`
	// Revision increments on every save so views know to re-fetch.
	Revision int `json:"revision"`
}

func New(ws workspace.Workspace) State {
	return State{Workspace: ws.ID, Screen: ScreenDashboard}
}

// Navigate opens the dashboard or an active table of ws.
func (s State) Navigate(ws workspace.Workspace, screen string) (State, error) {
	if s.Locked {
		return s, ErrLocked
	}
	if screen != ScreenDashboard {
		if err := ws.CheckTable(screen); err != nil {
			return s, err
		}
	}
	s.Workspace = ws.ID
	s.Screen = screen
	return s, nil
}

// SwitchWorkspace always lands on the dashboard and drops any open form.
func (s State) SwitchWorkspace(ws workspace.Workspace) (State, error) {
	if s.Locked {
		return s, ErrLocked
	}
	s.Workspace = ws.ID
	s.Screen = ScreenDashboard
	s.Form = nil
	return s, nil
}

func (s State) Lock() State {
	s.Locked = true
	return s
}

func (s State) Unlock() State {
	s.Locked = false
	return s
}

// OpenEditor targets an existing row of the current screen's table.
func (s State) OpenEditor(table, recordID string) (State, error) {
	if s.Locked {
		return s, ErrLocked
	}
	if table == "" {
		return s, ErrFormTarget
	}
	s.Form = &FormTarget{Table: table, Mode: FormEdit, RecordID: recordID}
	return s, nil
}

// OpenCreate opens a blank form, optionally pre-filled with locked values.
// Upsert only applies to stock.
func (s State) OpenCreate(table string, initial record.Record, locked []string, upsert bool) (State, error) {
	if s.Locked {
		return s, ErrLocked
	}
	if table == "" {
		table = s.Screen
	}
	if table == "" || table == ScreenDashboard {
		return s, ErrFormTarget
	}
	s.Form = &FormTarget{
		Table:   table,
		Mode:    FormCreate,
		Initial: initial.Clone(),
		Locked:  append([]string(nil), locked...),
		Upsert:  upsert && table == "stock",
	}
	return s, nil
}

func (s State) CloseForm() State {
	s.Form = nil
	return s
}

// Saved closes the form and bumps the revision.
func (s State) Saved() (State, error) {
	if s.Form == nil {
		return s, ErrNoForm
	}
	s.Form = nil
	s.Revision++
	return s, nil
}
