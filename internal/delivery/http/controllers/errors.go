package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"seminarrsvp/internal/delivery/http/helpers"
	"seminarrsvp/internal/delivery/http/middleware"
	"seminarrsvp/internal/domain"
)

// writeServiceError maps a service error onto the API envelope. Errors that match no
// sentinel are logged with the request id and answered with a generic 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidFields, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrInvalidCredentials):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "you do not have access to this resource")
	case errors.Is(err, domain.ErrNotInvited):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeNotInvited, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeAlreadyRegistered, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "email already registered")
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		requestID := middleware.RequestIDFromContext(r.Context())
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "request_id", requestID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError,
			fmt.Sprintf("internal server error (request id %s)", requestID))
	}
}

// requirePrincipal returns the caller stored by the gate, writing 401 when absent.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}
