package outbound

import (
	"errors"
	"fmt"
)

// Backend failure classes. Adapters wrap one of these in a ServiceError.
var (
	ErrSessionExpired = errors.New("session expired")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrRejected       = errors.New("rejected by backend")
	ErrUnavailable    = errors.New("backend unavailable")
	ErrTruncated      = errors.New("listing truncated")
)

// ServiceError describes a failed backend call.
type ServiceError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap returns the failure class.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
