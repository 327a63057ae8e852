package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dcode-ide/apiserver/internal/ai"
	"github.com/dcode-ide/apiserver/internal/logging"
	"github.com/dcode-ide/apiserver/internal/services"
	"github.com/dcode-ide/apiserver/internal/store"
	"github.com/dcode-ide/apiserver/internal/upstream"
	"github.com/go-chi/chi/v5/middleware"
)

// notFound names what was missing when a store lookup fails.
type notFound string

const (
	userNotFound    notFound = "User not found"
	projectNotFound notFound = "Project not found"
)

// writeServiceError maps a service error onto a status code and a client
// message. Anything unrecognised is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error, missing notFound) {
	status, msg := classify(err, missing)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeError(w, status, msg)
}

func classify(err error, missing notFound) (int, string) {
	var upstreamErr *upstream.Error
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, validationText(err)
	case errors.Is(err, services.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already exists"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid password"
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, string(missing)
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusServiceUnavailable, "AI service is not configured. Please contact the administrator."
	case errors.Is(err, upstream.ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid API key. Please check the upstream service configuration."
	case errors.Is(err, upstream.ErrRateLimited):
		return http.StatusTooManyRequests, "Rate limit exceeded. Please try again later."
	case errors.Is(err, upstream.ErrBadRequest):
		return http.StatusBadRequest, "Invalid request format. Please check your input."
	case errors.Is(err, upstream.ErrUnavailable):
		return http.StatusServiceUnavailable, "Cannot connect to the upstream service. Please try again later."
	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError, upstreamErr.Service + " service error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// validationText strips the sentinel prefix from a validation error.
func validationText(err error) string {
	msg := err.Error()
	if _, detail, found := strings.Cut(msg, services.ErrValidation.Error()+": "); found {
		return detail
	}
	return msg
}
