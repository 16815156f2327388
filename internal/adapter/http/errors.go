package http

import (
	"errors"
	"net/http"

	"juvenat-admin/internal/adapter/repository/postgrest"
	"juvenat-admin/internal/domain/record"
	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/schema"
	"juvenat-admin/internal/domain/shell"
	"juvenat-admin/internal/domain/staff"
	"juvenat-admin/internal/domain/stock"
	"juvenat-admin/internal/domain/workspace"
	"juvenat-admin/internal/usecase/browser"
	"juvenat-admin/internal/usecase/editor"
	"juvenat-admin/internal/usecase/search"
	"juvenat-admin/internal/usecase/session"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// statusFor maps domain and usecase errors to HTTP statuses. Anything not
// listed came from the backend and is reported as 502 with its message.
func statusFor(err error) int {
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve),
		errors.Is(err, schema.ErrInvalidNumber),
		errors.Is(err, requisition.ErrInvalidStatus),
		errors.Is(err, requisition.ErrInvalidFlag),
		errors.Is(err, requisition.ErrMissingRequester),
		errors.Is(err, requisition.ErrNoLineItems):
		return http.StatusUnprocessableEntity
	case errors.Is(err, requisition.ErrFlagsRequireApproval),
		errors.Is(err, search.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, record.ErrNotFound),
		errors.Is(err, record.ErrUnknownTable),
		errors.Is(err, requisition.ErrNotFound),
		errors.Is(err, stock.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shell.ErrLocked):
		return http.StatusLocked
	case errors.Is(err, errNoSession),
		errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, shell.ErrSessionNotFound),
		errors.Is(err, staff.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, staff.ErrNoAccess),
		errors.Is(err, workspace.ErrNoWorkspace),
		errors.Is(err, workspace.ErrTableNotFound),
		errors.Is(err, workspace.ErrTableInactive):
		return http.StatusForbidden
	case errors.Is(err, browser.ErrConfirmationRequired),
		errors.Is(err, shell.ErrNoForm),
		errors.Is(err, shell.ErrFormTarget),
		errors.Is(err, postgrest.ErrUnsupportedQuery):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// fail writes err as an ErrorResponse.
func fail(c echo.Context, err error) error {
	code := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	var ve validator.ValidationErrors
	var invalid *editor.InvalidFieldsError
	switch {
	case errors.As(err, &ve):
		resp.Error = "validation failed"
		resp.Details = ToFieldErrors(err)
	case errors.As(err, &invalid):
		for _, f := range invalid.Fields {
			resp.Details = append(resp.Details, FieldError{Field: f, Message: "must be a number"})
		}
	}
	return c.JSON(code, resp)
}

// bind decodes and validates a request body. When it reports false the
// error response has already been written.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, fail(c, err)
	}
	return true, nil
}
