package http

import (
	"net/http"
	"strings"

	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/usecase/session"

	requisitionuc "juvenat-admin/internal/usecase/requisition"

	"github.com/labstack/echo/v4"
)

type RequisitionHandler struct {
	uc       *requisitionuc.Usecase
	sessions *session.Usecase
}

func NewRequisitionHandler(uc *requisitionuc.Usecase, sessions *session.Usecase) *RequisitionHandler {
	return &RequisitionHandler{uc: uc, sessions: sessions}
}

// allowed requires the requisition table in the caller's workspace.
func (h *RequisitionHandler) allowed(c echo.Context) error {
	_, ws, err := current(c, h.sessions)
	if err != nil {
		return err
	}
	return ws.CheckTable(requisition.Table)
}

// List serves one status tab; etat defaults to pending.
func (h *RequisitionHandler) List(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	status := requisition.StatusPending
	if raw := strings.TrimSpace(c.QueryParam("etat")); raw != "" {
		s, err := requisition.ParseStatus(raw)
		if err != nil {
			return fail(c, err)
		}
		status = s
	}
	list, err := h.uc.ListByStatus(c.Request().Context(), status, c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *RequisitionHandler) Tabs(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	tabs, err := h.uc.Counts(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, tabs)
}

func (h *RequisitionHandler) Requesters(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	list, err := h.uc.Requesters(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	type option struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	out := make([]option, 0, len(list))
	for _, r := range list {
		out = append(out, option{ID: r.ID, Label: r.Label()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RequisitionHandler) Get(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequisitionHandler) LineItems(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	items, err := h.uc.LineItems(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

type lineItemReq struct {
	Nom          string   `json:"nom"`
	Quantite     int      `json:"quantite" validate:"gte=0"`
	Presentation string   `json:"presentation"`
	Description  string   `json:"description"`
	Prix         *float64 `json:"prix" validate:"omitempty,gte=0"`
}

type createRequisitionReq struct {
	Personnel string        `json:"personnel" validate:"required"`
	Articles  []lineItemReq `json:"articles" validate:"required,min=1,dive"`
}

func (h *RequisitionHandler) Create(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	var req createRequisitionReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	items := make([]requisition.LineItem, 0, len(req.Articles))
	for _, a := range req.Articles {
		items = append(items, requisition.LineItem(a))
	}
	dto, err := h.uc.Create(c.Request().Context(), requisitionuc.CreateInput{Requester: req.Personnel, LineItems: items})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type setStatusReq struct {
	Etat string `json:"etat" validate:"required,etat"`
}

func (h *RequisitionHandler) SetStatus(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	var req setStatusReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.SetStatus(c.Request().Context(), c.Param("id"), req.Etat)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequisitionHandler) ToggleFlag(c echo.Context) error {
	if err := h.allowed(c); err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.ToggleFlag(c.Request().Context(), c.Param("id"), c.Param("flag"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
