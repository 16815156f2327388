package http

import (
	"errors"
	"strconv"
	"strings"

	"juvenat-admin/internal/adapter/middleware"
	"juvenat-admin/internal/domain/workspace"
	"juvenat-admin/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

var errNoSession = errors.New("missing session")

// principalOr401 reads the caller set by middleware.RequireSession.
func principalOr401(c echo.Context) (*session.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, errNoSession
	}
	return p, nil
}

// current returns the caller and the workspace their session is in.
func current(c echo.Context, sessions *session.Usecase) (*session.Principal, workspace.Workspace, error) {
	p, err := principalOr401(c)
	if err != nil {
		return nil, workspace.Workspace{}, err
	}
	ws, err := sessions.Workspace(c.Request().Context(), p)
	return p, ws, err
}

func queryInt(c echo.Context, name string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name))); err == nil && n >= 0 {
		return n
	}
	return def
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(c.QueryParam(name)))
	return b
}

func queryList(c echo.Context, name string) []string {
	var out []string
	for _, v := range strings.Split(c.QueryParam(name), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
