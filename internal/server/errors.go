// Package server provides the HTTP API for intake extraction, drafts and
// withdrawal reason analytics.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrDraftNotFound indicates no draft exists with the requested ID
type ErrDraftNotFound struct {
	ID uuid.UUID
}

func (e *ErrDraftNotFound) Error() string {
	return fmt.Sprintf("draft not found: %s", e.ID)
}

// ErrStoreUnavailable is returned by draft routes when the server runs
// without a database.
var ErrStoreUnavailable = errors.New("draft storage is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var notFound *ErrDraftNotFound
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
