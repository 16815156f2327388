package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"juvenat-admin/internal/domain/shell"
	"juvenat-admin/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Authenticator resolves bearer tokens and keeps the idle lock fresh.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Principal, error)
	Touch(ctx context.Context, p *session.Principal) error
}

func SetPrincipal(c echo.Context, p *session.Principal) { c.Set(principalKey, p) }

func PrincipalFrom(c echo.Context) (*session.Principal, bool) {
	p, ok := c.Get(principalKey).(*session.Principal)
	return p, ok && p != nil
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireSession attaches the caller's principal. Locked sessions pass so
// they can still read state and unlock.
func RequireSession(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			p, err := a.Authenticate(c.Request().Context(), token)
			switch {
			case errors.Is(err, session.ErrInvalidToken), errors.Is(err, shell.ErrSessionNotFound):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			case err != nil:
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

// RequireActive refreshes the idle deadline and answers 423 once it has
// passed. It runs after RequireSession.
func RequireActive(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing session"})
			}
			err := a.Touch(c.Request().Context(), p)
			switch {
			case errors.Is(err, shell.ErrLocked):
				return c.JSON(http.StatusLocked, map[string]string{"error": err.Error()})
			case err != nil:
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			return next(c)
		}
	}
}
