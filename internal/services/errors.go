package services

import "errors"

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation         = errors.New("validation failed")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicate          = errors.New("username or email already exists")
	ErrNotFound           = errors.New("not found")
)

// ValidationError carries a client-facing message about malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(message string) error {
	return &ValidationError{Message: message}
}
