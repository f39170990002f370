// Package response provides utilities for sending consistent HTTP responses.
// It includes helpers for JSON responses and standardized error responses.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/validation"
)

// ErrorResponse represents a structured error response returned by the API.
// The Details field is optional and can contain additional context about the error.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Sets the Content-Type header to application/json and writes the status code.
// If data is nil, only the status code is sent (useful for 204 No Content).
// Logs encoding errors but does not fail the response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("Failed to encode JSON response")
		}
	}
}

// RespondError sends a structured error response with the given status code.
// The message should be a user-friendly error description.
// The details parameter can be an error string, additional context, or nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
//	response.RespondError(w, http.StatusNotFound, "resource not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}

// StatusForError maps engine errors onto HTTP status codes.
// Anything unrecognised is a 500.
func StatusForError(err error) int {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTickerNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrShareLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateTicker):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidAllocationInput),
		errors.Is(err, apperrors.ErrInvalidWindow),
		errors.Is(err, apperrors.ErrInvalidTicker):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTransientFetchFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondServiceError sends err with the status from StatusForError. Server-side failures
// use fallback as the message; client errors use the error itself.
func RespondServiceError(w http.ResponseWriter, err error, fallback string) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		RespondError(w, status, fallback, err.Error())
		return
	}
	RespondError(w, status, rootMessage(err), err.Error())
}

// rootMessage returns the message of the first engine sentinel that err wraps.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperrors.ErrTickerNotFound,
		apperrors.ErrHoldingNotFound,
		apperrors.ErrShareLinkNotFound,
		apperrors.ErrDuplicateTicker,
		apperrors.ErrInvalidAllocationInput,
		apperrors.ErrInvalidWindow,
		apperrors.ErrInvalidTicker,
		apperrors.ErrTransientFetchFailure,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "validation failed"
}
