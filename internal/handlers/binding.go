package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindErrorMessage turns a gin binding error into a client-facing message.
// Field-level validation failures are listed per field; anything else (bad
// JSON, type mismatches) falls back to the raw error text.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request format: " + err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("field '%s' must be a valid email address", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("field '%s' must be one of: %s", fe.Field(), fe.Param()))
		case "min":
			parts = append(parts, fmt.Sprintf("field '%s' must have at least %s entries", fe.Field(), fe.Param()))
		case "gt":
			parts = append(parts, fmt.Sprintf("field '%s' must be greater than %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("field '%s' failed validation '%s'", fe.Field(), fe.Tag()))
		}
	}
	return "Invalid request: " + strings.Join(parts, "; ")
}
