package cva

import (
	"errors"
	"fmt"
)

// ErrMissingRecord is returned when a case lacks the record an inject is built from
var ErrMissingRecord = errors.New("case has no record for this inject")

// ValidationError represents a source field that cannot be mapped
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

func missing(record string) error {
	return fmt.Errorf("%w: %s", ErrMissingRecord, record)
}
