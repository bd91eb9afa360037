// Package apperror defines the application's error taxonomy.
//
// Every layer below the handlers returns one of these typed errors (or an
// error wrapping one). The HTTP layer maps them to status codes with
// errors.Is — services never import net/http and never pick status codes
// themselves.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDependency   = errors.New("dependency unavailable")
	ErrInvalidState = errors.New("invalid state")
)

type AppError struct {
	Err     error  // sentinel category, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field (or collaborator) causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Unauthorized returns an AppError for failed authentication.
// The message must stay generic — it never reveals which credential field
// was wrong, so login failures can't be used for account enumeration.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Dependency returns an AppError for an external collaborator that is
// unreachable or misbehaving. Field carries the collaborator name so a
// client can tell "analysis unavailable" apart from a storage failure.
func Dependency(service, message string) *AppError {
	return &AppError{
		Err:     ErrDependency,
		Message: message,
		Field:   service,
	}
}

// InvalidState returns an AppError for an illegal state transition, e.g.
// reconfiguring a focus session while its countdown is running.
func InvalidState(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidState,
		Message: message,
	}
}
