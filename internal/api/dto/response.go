package dto

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	apperrors "github.com/spec-kit/attendance-service/pkg/util"
)

// Response is the success envelope. Each endpoint fixes T.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// OK wraps data in a success envelope.
func OK[T any](message string, data T) Response[T] {
	return Response[T]{Success: true, Message: message, Data: data}
}

// ErrorResponse is the envelope rendered for domain errors.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// Validatable is implemented by request payloads.
type Validatable interface {
	Validate() error
}

// ValidationError converts ozzo field errors into a VALIDATION_FAILED domain
// error keyed by JSON field name.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if errors.As(err, &fields) {
		details := make(map[string]any, len(fields))
		for field, fieldErr := range fields {
			details[field] = fieldErr.Error()
		}
		return apperrors.NewValidationError("invalid payload", details)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
