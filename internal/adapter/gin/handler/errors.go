package handler

import (
	"errors"
	"net/http"

	pkgerrors "user-directory/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// classify maps a usecase error to an HTTP status and a response that is
// safe to show to clients. Driver detail never leaves the server.
func classify(err error) (int, ErrorResponse) {
	var validationErr *pkgerrors.ValidationError
	var notFoundErr *pkgerrors.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: validationErr.Error()}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: notFoundErr.Error()}
	case pkgerrors.IsConnection(err):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "database_unavailable", Message: "The database is unavailable"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	}
}
