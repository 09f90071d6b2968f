package gin

import (
	"net/http"
	"strings"

	"github.com/drogueria/backoffice/internal/domain/dashboard"
	"github.com/drogueria/backoffice/internal/domain/order"
	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/inbound"
	apperrors "github.com/drogueria/backoffice/internal/utils/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// orderHandler implements inbound.OrderHttpPort.
type orderHandler struct {
	controller order.StatusController
	view       order.View
	dashboard  dashboard.Service
	logger     *zap.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(controller order.StatusController, view order.View, dash dashboard.Service, logger *zap.Logger) inbound.OrderHttpPort {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderHandler{
		controller: controller,
		view:       view,
		dashboard:  dash,
		logger:     logger.Named("order_http"),
	}
}

// Compile-time interface check
var _ inbound.OrderHttpPort = (*orderHandler)(nil)

// ListActiveOrders returns the pending and processing orders.
//
//	@Summary		List active orders
//	@Description	Pending and processing orders. Customers only see their own.
//	@Tags			Order
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	model.ListResponse[model.Order]
//	@Failure		401	{object}	apperrors.ErrorResponse
//	@Failure		502	{object}	apperrors.ErrorResponse
//	@Router			/orders/active [get]
func (h *orderHandler) ListActiveOrders(c *gin.Context) {
	user, ok := GetActingUserFromContext(c)
	if !ok {
		return
	}

	orders, err := h.dashboard.ActiveOrders(c.Request.Context(), user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewListResponse(orders))
}

// GetTransitionOptions returns the targets the caller may request.
//
//	@Summary		Get transition options
//	@Description	States the acting user may move the order to
//	@Tags			Order
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Order ID"
//	@Success		200	{object}	model.TransitionOptions
//	@Failure		403	{object}	apperrors.ErrorResponse
//	@Failure		404	{object}	apperrors.ErrorResponse
//	@Router			/orders/{id}/transitions [get]
func (h *orderHandler) GetTransitionOptions(c *gin.Context) {
	user, ok := GetActingUserFromContext(c)
	if !ok {
		return
	}

	ord, err := h.controller.Resolve(c.Request.Context(), h.view, strings.TrimSpace(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}
	if !user.Role.IsStaff() && !ord.OwnedBy(user.ID) {
		handleError(c, apperrors.Forbidden("the order belongs to another customer"))
		return
	}

	c.JSON(http.StatusOK, model.TransitionOptions{
		OrderID: ord.ID,
		State:   ord.State,
		Allowed: h.controller.Options(user, ord),
	})
}

// RequestTransition changes the order state.
//
//	@Summary		Request order transition
//	@Description	Applies the change locally, sends it to the backend and returns the confirmed order
//	@Tags			Order
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Order ID"
//	@Param			request	body		model.TransitionRequest	true	"Transition request"
//	@Success		200		{object}	model.Order
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Failure		401		{object}	apperrors.ErrorResponse
//	@Failure		403		{object}	apperrors.ErrorResponse
//	@Failure		404		{object}	apperrors.ErrorResponse
//	@Failure		409		{object}	apperrors.ErrorResponse
//	@Failure		422		{object}	apperrors.ErrorResponse
//	@Failure		502		{object}	apperrors.ErrorResponse
//	@Router			/orders/{id}/transitions [post]
func (h *orderHandler) RequestTransition(c *gin.Context) {
	user, ok := GetActingUserFromContext(c)
	if !ok {
		return
	}

	var req model.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperrors.BadRequest("invalid request body").WithError(err))
		return
	}
	target := model.OrderState(strings.ToLower(strings.TrimSpace(string(req.Target))))

	ctx := c.Request.Context()
	ord, err := h.controller.Resolve(ctx, h.view, strings.TrimSpace(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	updated, err := h.controller.RequestTransition(ctx, h.view, ord, target, user, req.Comment)
	if err != nil {
		h.logger.Info("transition refused",
			zap.String("order_id", ord.ID),
			zap.String("target", target.String()),
			zap.String("user_id", user.ID),
			zap.Error(err))
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
