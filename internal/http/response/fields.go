package response

import (
	"errors"
	"net/http"

	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
)

// FieldErrors is a 422 validation failure keyed by JSON field name.
type FieldErrors struct {
	Fields map[string]string
}

func (fe *FieldErrors) Error() string { return "request validation failed" }

// NewFieldErrors wraps fields in an apierr.Error with status 422.
func NewFieldErrors(fields map[string]string) error {
	return &apierr.Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    "invalid_request",
		Message: "Request validation failed",
		Err:     errors.Join(&FieldErrors{Fields: fields}, apierr.ErrInvalidArgument),
	}
}

func asFieldErrors(err error, out **FieldErrors) bool {
	return errors.As(err, out)
}
