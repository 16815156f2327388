package http

import (
	"net/http"

	"juvenat-admin/internal/usecase/dashboard"
	"juvenat-admin/internal/usecase/search"
	"juvenat-admin/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

type SearchHandler struct {
	search    *search.Usecase
	dashboard *dashboard.Usecase
	sessions  *session.Usecase
}

func NewSearchHandler(s *search.Usecase, d *dashboard.Usecase, sessions *session.Usecase) *SearchHandler {
	return &SearchHandler{search: s, dashboard: d, sessions: sessions}
}

// Search answers the command palette. A query replaced by a newer one
// from the same session gets 409 and should be dropped by the client.
func (h *SearchHandler) Search(c echo.Context) error {
	p, ws, err := current(c, h.sessions)
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.search.Search(c.Request().Context(), p.SessionID, ws, c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) Dashboard(c echo.Context) error {
	if _, _, err := current(c, h.sessions); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, h.dashboard.Stats(c.Request().Context()))
}
