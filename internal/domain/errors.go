package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by services, repositories and the HTTP layer.
var (
	ErrNotFound           = errors.New("not found")
	ErrSeminarNotFound    = fmt.Errorf("seminar %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCapacityExceeded   = errors.New("seminar is at full capacity")
	ErrNotInvited         = errors.New("user is not invited to this seminar")
	ErrAlreadyRegistered  = errors.New("user is already registered for this seminar")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("seminar changed concurrently, retry")

	// ErrConditionNotMet is returned by conditional store updates that matched no document.
	ErrConditionNotMet = errors.New("update condition not met")
)

// ValidationError carries field-level messages and matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Messages []string
}

// NewValidationError returns a ValidationError for the given messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
