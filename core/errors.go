package core

import (
	"errors"
	"fmt"
)

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrChallengeConsumed = fmt.Errorf("challenge already used: %w", ErrTokenInvalid)
	ErrValidation        = errors.New("validation failed")
)

// ValidationError reports an input argument that fails its shape contract.
// It is returned before any cryptographic work is done.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
