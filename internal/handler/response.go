// Package handler contains the HTTP layer: request decoding, response
// encoding, and the domain-error-to-status-code mapping. Handlers never
// touch storage and never pick business rules — both live a layer down.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/detox-companion/internal/apperror"
)

// ErrorResponse is the one error shape every endpoint returns:
//
//	{"error":"validation_error","message":"minutes must be between 0 and 240","field":"minutes"}
//
// Error is machine-readable, Message is for humans. Field names the
// offending input field — or, for dependency errors, the collaborator
// that failed.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON sends data with the given status. Headers must be set before
// the body — once Encode writes, the status line is out the door.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a domain error into HTTP. The service layer
// returns apperror categories; errors.Is walks the wrap chain so a
// service-level fmt.Errorf around an AppError still maps correctly.
// Anything outside the taxonomy is a 500 with no internal detail leaked.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrInvalidState):
			status = http.StatusConflict
			errorType = "invalid_state"
		case errors.Is(err, apperror.ErrDependency):
			status = http.StatusBadGateway
			errorType = "dependency_unavailable"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON decodes the request body into dst, turning malformed JSON
// into a validation error so clients see a 400, not a 500.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}
