// Package upstream classifies failures of third-party HTTP services.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrUnauthorized means the upstream rejected our credential.
	ErrUnauthorized = errors.New("upstream rejected credentials")
	// ErrRateLimited means the upstream throttled the call.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
	// ErrBadRequest means the upstream rejected the request as malformed.
	ErrBadRequest = errors.New("upstream rejected request")
	// ErrUnavailable means the upstream could not be reached.
	ErrUnavailable = errors.New("upstream unreachable")
)

// Error is any other non-success upstream response.
type Error struct {
	Service string
	Status  int
	Message string
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Service, e.Status, msg)
}

// Check converts the outcome of a resty call into nil or a classified error.
// message is the upstream's own error text, if it sent one.
func Check(service string, resp *resty.Response, err error, message string) error {
	if err != nil {
		return fmt.Errorf("%s: %w: %v", service, ErrUnavailable, err)
	}
	if resp == nil {
		return fmt.Errorf("%s: %w: empty response", service, ErrUnavailable)
	}
	if resp.IsSuccess() {
		return nil
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", service, ErrUnauthorized)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", service, ErrRateLimited)
	case http.StatusBadRequest:
		return fmt.Errorf("%s: %w: %s", service, ErrBadRequest, message)
	default:
		return &Error{Service: service, Status: resp.StatusCode(), Message: message}
	}
}
