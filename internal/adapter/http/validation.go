package http

import (
	"errors"
	"regexp"
	"strings"

	"juvenat-admin/internal/domain/requisition"
	"juvenat-admin/internal/domain/workspace"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var rePIN = regexp.MustCompile(`^[0-9]{4,8}$`)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// 4 to 8 digits
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return rePIN.MatchString(fl.Field().String())
	})
	// one of the requisition status labels
	_ = v.RegisterValidation("etat", func(fl validator.FieldLevel) bool {
		return requisition.Status(strings.TrimSpace(fl.Field().String())).Valid()
	})
	// a catalog workspace id
	_ = v.RegisterValidation("workspace", func(fl validator.FieldLevel) bool {
		_, ok := workspace.Get(fl.Field().String())
		return ok
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// ToFieldErrors maps validator.ValidationErrors to readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "pin":
			out = append(out, FieldError{Field: field, Message: "must be 4 to 8 digits"})
		case "etat":
			out = append(out, FieldError{Field: field, Message: "must be a known requisition status"})
		case "workspace":
			out = append(out, FieldError{Field: field, Message: "must be a known workspace"})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must have at least " + e.Param() + " item(s)"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
