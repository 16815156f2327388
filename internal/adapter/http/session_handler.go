package http

import (
	"net/http"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

type SessionHandler struct{ uc *session.Usecase }

func NewSessionHandler(uc *session.Usecase) *SessionHandler { return &SessionHandler{uc: uc} }

type loginReq struct {
	Identifier string `json:"identifier" validate:"required"`
	PIN        string `json:"pin" validate:"required"`
	Workspace  string `json:"workspace" validate:"omitempty,workspace"`
}

func (h *SessionHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Login(c.Request().Context(), session.LoginInput(req))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *SessionHandler) Logout(c echo.Context) error {
	p, err := principalOr401(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.uc.Logout(c.Request().Context(), p); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// respond runs a state transition for the caller and writes the new state.
func (h *SessionHandler) respond(c echo.Context, fn func(*session.Principal) (*session.StateDTO, error)) error {
	p, err := principalOr401(c)
	if err != nil {
		return fail(c, err)
	}
	dto, err := fn(p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *SessionHandler) State(c echo.Context) error {
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.State(c.Request().Context(), p)
	})
}

func (h *SessionHandler) Lock(c echo.Context) error {
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.Lock(c.Request().Context(), p)
	})
}

type unlockReq struct {
	PIN string `json:"pin" validate:"required"`
}

func (h *SessionHandler) Unlock(c echo.Context) error {
	var req unlockReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.Unlock(c.Request().Context(), p, req.PIN)
	})
}

type navigateReq struct {
	Screen string `json:"screen" validate:"required"`
}

func (h *SessionHandler) Navigate(c echo.Context) error {
	var req navigateReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.Navigate(c.Request().Context(), p, req.Screen)
	})
}

type switchReq struct {
	Workspace string `json:"workspace" validate:"required,workspace"`
}

func (h *SessionHandler) SwitchWorkspace(c echo.Context) error {
	var req switchReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.SwitchWorkspace(c.Request().Context(), p, req.Workspace)
	})
}

type openEditorReq struct {
	Table string `json:"table" validate:"required"`
	ID    string `json:"id" validate:"required"`
}

func (h *SessionHandler) OpenEditor(c echo.Context) error {
	var req openEditorReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.OpenEditor(c.Request().Context(), p, req.Table, req.ID)
	})
}

type openCreateReq struct {
	// Table defaults to the current screen.
	Table   string         `json:"table"`
	Initial map[string]any `json:"initial"`
	Locked  []string       `json:"locked"`
	Upsert  bool           `json:"upsert"`
}

func (h *SessionHandler) OpenCreate(c echo.Context) error {
	var req openCreateReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.OpenCreate(c.Request().Context(), p, req.Table, record.Record(req.Initial), req.Locked, req.Upsert)
	})
}

func (h *SessionHandler) CloseForm(c echo.Context) error {
	return h.respond(c, func(p *session.Principal) (*session.StateDTO, error) {
		return h.uc.CloseForm(c.Request().Context(), p)
	})
}
