package gin

import (
	"context"
	"errors"
	"net/http"

	"github.com/drogueria/backoffice/internal/domain/dashboard"
	"github.com/drogueria/backoffice/internal/domain/order"
	"github.com/drogueria/backoffice/internal/port/outbound"
	apperrors "github.com/drogueria/backoffice/internal/utils/errors"
	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"
)

// handleError maps domain errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	appErr := toAppError(err)
	status := apperrors.GetStatusCode(appErr)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if te, ok := order.IsTransitionError(err); ok {
		return transitionAppError(te)
	}

	switch {
	case errors.Is(err, dashboard.ErrUnknownView):
		return apperrors.NotFound("dashboard view")
	case errors.Is(err, dashboard.ErrViewForbidden):
		return apperrors.Forbidden("this dashboard is not available for your role")
	case errors.Is(err, outbound.ErrSessionExpired):
		return apperrors.SessionExpired("the session has expired, sign in again").WithError(err)
	case errors.Is(err, outbound.ErrForbidden):
		return apperrors.Forbidden("the backend denied this request").WithError(err)
	case errors.Is(err, outbound.ErrNotFound):
		return apperrors.NotFound("resource").WithError(err)
	case errors.Is(err, outbound.ErrRejected):
		return apperrors.ValidationError("the backend rejected the request").WithError(err)
	default:
		return upstreamError(err, "backend request failed")
	}
}

// upstreamError classifies a failure to reach the backend.
func upstreamError(err error, message string) *apperrors.AppError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(message).WithError(err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.ServiceUnavailable(message).WithError(err)
	default:
		return apperrors.BadGateway(message).WithError(err)
	}
}

// transitionAppError maps a transition failure onto the HTTP error envelope.
func transitionAppError(te *order.TransitionError) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch te.Kind {
	case order.KindIllegalTransition:
		appErr = apperrors.Conflict(te.Reason)
		appErr.Code = "ILLEGAL_TRANSITION"
	case order.KindUnauthorized:
		appErr = apperrors.Forbidden(te.Reason)
	case order.KindInvalidReference:
		appErr = apperrors.BadRequest(te.Reason)
		appErr.Code = "INVALID_REFERENCE"
	case order.KindSessionExpired:
		appErr = apperrors.SessionExpired(te.Reason)
	case order.KindNotFound:
		appErr = apperrors.NotFound("order")
		appErr.Message = te.Reason
	case order.KindValidationRejected:
		appErr = apperrors.ValidationError(te.Reason)
	default:
		appErr = upstreamError(te.Err, te.Reason)
	}
	appErr.Err = te

	details := map[string]any{
		"order_id": te.OrderID,
		"kind":     string(te.Kind),
	}
	if te.To != "" {
		details["target"] = string(te.To)
	}
	if te.ClearSession() {
		details[apperrors.DetailClearSession] = true
	}
	if te.RequiresReload() {
		details[apperrors.DetailReload] = true
	}
	return appErr.WithDetails(details)
}
