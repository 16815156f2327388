package http

import (
	"net/http"
	"strconv"
	"strings"

	"juvenat-admin/internal/usecase/browser"
	"juvenat-admin/internal/usecase/session"
	"juvenat-admin/pkg/csvexport"

	"github.com/labstack/echo/v4"
)

const filterPrefix = "f."

type TableHandler struct {
	uc       *browser.Usecase
	sessions *session.Usecase
}

func NewTableHandler(uc *browser.Usecase, sessions *session.Usecase) *TableHandler {
	return &TableHandler{uc: uc, sessions: sessions}
}

// pageInput reads ?page=&q=&sort=&desc=&visible=a,b and one f.<column>
// parameter per column filter.
func (h *TableHandler) pageInput(c echo.Context) (browser.PageInput, error) {
	_, ws, err := current(c, h.sessions)
	if err != nil {
		return browser.PageInput{}, err
	}
	in := browser.PageInput{
		Workspace: ws,
		Table:     c.Param("table"),
		Page:      queryInt(c, "page", 0),
		Search:    c.QueryParam("q"),
		SortBy:    c.QueryParam("sort"),
		Desc:      queryBool(c, "desc"),
		Visible:   queryList(c, "visible"),
	}
	for k, v := range c.QueryParams() {
		if col := strings.TrimPrefix(k, filterPrefix); col != k && col != "" && len(v) > 0 && v[0] != "" {
			if in.Filters == nil {
				in.Filters = map[string]string{}
			}
			in.Filters[col] = v[0]
		}
	}
	return in, nil
}

func (h *TableHandler) Page(c echo.Context) error {
	in, err := h.pageInput(c)
	if err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Page(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Export downloads the filtered page as CSV.
func (h *TableHandler) Export(c echo.Context) error {
	in, err := h.pageInput(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.ExportCSV(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+out.Filename+`"`)
	c.Response().Header().Set("X-Row-Count", strconv.Itoa(out.Rows))
	return c.Blob(http.StatusOK, csvexport.ContentType, out.Body)
}

// Delete needs ?confirm=true and answers with the refreshed page.
func (h *TableHandler) Delete(c echo.Context) error {
	in, err := h.pageInput(c)
	if err != nil {
		return fail(c, err)
	}
	dto, err := h.uc.Delete(c.Request().Context(), in, c.Param("id"), queryBool(c, "confirm"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
