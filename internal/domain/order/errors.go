package order

import (
	"errors"
	"fmt"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
)

// ErrorKind classifies why a transition did not happen.
type ErrorKind string

const (
	KindIllegalTransition  ErrorKind = "illegal_transition"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindInvalidReference   ErrorKind = "invalid_reference"
	KindSessionExpired     ErrorKind = "session_expired"
	KindNotFound           ErrorKind = "not_found"
	KindValidationRejected ErrorKind = "validation_rejected"
	KindTransportFailure   ErrorKind = "transport_failure"
)

// Domain errors for order transitions. A TransitionError matches the
// sentinel of its kind with errors.Is.
var (
	ErrIllegalTransition  = errors.New("transition not allowed")
	ErrUnauthorized       = errors.New("not authorized for transition")
	ErrInvalidReference   = errors.New("invalid order reference")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotFound           = errors.New("order not found")
	ErrValidationRejected = errors.New("transition rejected by backend")
	ErrTransportFailure   = errors.New("order service unreachable")

	ErrAlreadySettled = errors.New("transition already settled")
	ErrInvalidPolicy  = errors.New("invalid transition policy")
)

var kindSentinels = map[ErrorKind]error{
	KindIllegalTransition:  ErrIllegalTransition,
	KindUnauthorized:       ErrUnauthorized,
	KindInvalidReference:   ErrInvalidReference,
	KindSessionExpired:     ErrSessionExpired,
	KindNotFound:           ErrNotFound,
	KindValidationRejected: ErrValidationRejected,
	KindTransportFailure:   ErrTransportFailure,
}

// TransitionError is returned for every rejected or failed transition.
type TransitionError struct {
	Kind       ErrorKind
	OrderID    string
	From       model.OrderState
	To         model.OrderState
	Reason     string
	StatusCode int
	// Remote is set when the failure came back from the order service,
	// after the optimistic change was already applied.
	Remote bool
	Err    error
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %q %s -> %s: %s", e.OrderID, e.From, e.To, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind.
func (e *TransitionError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// ClearSession reports whether the caller must drop its session.
func (e *TransitionError) ClearSession() bool {
	return e.Kind == KindSessionExpired
}

// RequiresReload reports whether the caller must refetch the order list.
func (e *TransitionError) RequiresReload() bool {
	return e.Remote
}

func newTransitionError(kind ErrorKind, ord *model.Order, target model.OrderState, reason string) *TransitionError {
	e := &TransitionError{Kind: kind, To: target, Reason: reason}
	if ord != nil {
		e.OrderID = ord.ID
		e.From = ord.State
	}
	return e
}

// classify maps an order service failure onto a transition error.
func classify(err error, ord *model.Order, target model.OrderState) *TransitionError {
	var te *TransitionError
	if errors.As(err, &te) {
		return te
	}

	kind := KindTransportFailure
	reason := "the order service could not be reached"
	switch {
	case errors.Is(err, outbound.ErrSessionExpired):
		kind, reason = KindSessionExpired, "the session has expired, sign in again"
	case errors.Is(err, outbound.ErrForbidden):
		kind, reason = KindUnauthorized, "the backend denied this change for the current user"
	case errors.Is(err, outbound.ErrNotFound):
		kind, reason = KindNotFound, "the order no longer exists"
	case errors.Is(err, outbound.ErrRejected):
		kind, reason = KindValidationRejected, "the backend rejected the change"
	}

	e := newTransitionError(kind, ord, target, reason)
	e.Err = err
	e.Remote = true

	var se *outbound.ServiceError
	if errors.As(err, &se) {
		e.StatusCode = se.StatusCode
		if se.Message != "" && kind != KindTransportFailure {
			e.Reason = se.Message
		}
	}
	return e
}
