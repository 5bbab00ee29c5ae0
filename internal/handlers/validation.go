package handlers

import (
	"github.com/go-playground/validator/v10"
)

// BindingError represents a single request-binding validation error
type BindingError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseBindingErrors converts gin binding (validator) errors to a
// user-friendly format
func ParseBindingErrors(err error) []BindingError {
	var errors []BindingError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, BindingError{
				Field:   fieldError.Field(),
				Message: getBindingErrorMessage(fieldError),
			})
		}
	}

	return errors
}

func getBindingErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "max":
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
