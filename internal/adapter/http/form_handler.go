package http

import (
	"net/http"
	"strconv"
	"strings"

	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/shell"
	"juvenat-admin/internal/usecase/editor"
	"juvenat-admin/internal/usecase/session"
	"juvenat-admin/pkg/frenchnum"

	"github.com/labstack/echo/v4"
)

// FormHandler serves the form currently open in the caller's shell.
type FormHandler struct {
	uc       *editor.Usecase
	sessions *session.Usecase
}

func NewFormHandler(uc *editor.Usecase, sessions *session.Usecase) *FormHandler {
	return &FormHandler{uc: uc, sessions: sessions}
}

func (h *FormHandler) target(c echo.Context) (*session.Principal, *shell.FormTarget, error) {
	p, ws, err := current(c, h.sessions)
	if err != nil {
		return nil, nil, err
	}
	st, err := h.sessions.State(c.Request().Context(), p)
	if err != nil {
		return nil, nil, err
	}
	if st.State.Form == nil {
		return nil, nil, shell.ErrNoForm
	}
	if err := ws.CheckTable(st.State.Form.Table); err != nil {
		return nil, nil, err
	}
	return p, st.State.Form, nil
}

func (h *FormHandler) Get(c echo.Context) error {
	_, t, err := h.target(c)
	if err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Form(c.Request().Context(), t.Table, t.RecordID, t.Initial, t.Locked)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type saveFormReq struct {
	Values map[string]any `json:"values" validate:"required"`
}

type saveFormResp struct {
	Record record.Record     `json:"record"`
	State  *session.StateDTO `json:"state"`
}

// Save persists the open form then closes it.
func (h *FormHandler) Save(c echo.Context) error {
	var req saveFormReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, t, err := h.target(c)
	if err != nil {
		return fail(c, err)
	}
	ctx := c.Request().Context()
	rec, err := h.uc.Save(ctx, editor.SaveInput{
		Table:   t.Table,
		ID:      t.RecordID,
		Values:  record.Record(req.Values),
		Initial: t.Initial,
		Locked:  t.Locked,
		Upsert:  t.Upsert,
	})
	if err != nil {
		return fail(c, err)
	}
	st, err := h.sessions.Saved(ctx, p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, saveFormResp{Record: rec, State: st})
}

// AmountInWords previews montant_lettre while a decaissement is typed.
func (h *FormHandler) AmountInWords(c echo.Context) error {
	montant, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(c.QueryParam("montant")), ",", "."), 64)
	if err != nil || !frenchnum.InRange(montant) {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid number",
			Details: []FieldError{{Field: "montant", Message: "must be a number"}},
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"montant_lettre": h.uc.AmountInWords(montant, c.QueryParam("devise")),
	})
}
