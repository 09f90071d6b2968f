package gin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/drogueria/backoffice/internal/domain/dashboard"
	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/inbound"
	apperrors "github.com/drogueria/backoffice/internal/utils/errors"
	"github.com/gin-gonic/gin"
)

// RefreshTrigger schedules an asynchronous dashboard refresh.
type RefreshTrigger interface {
	Trigger()
}

// dashboardHandler implements inbound.DashboardHttpPort.
type dashboardHandler struct {
	dashboard dashboard.Service
	trigger   RefreshTrigger
}

// NewDashboardHandler creates a new dashboard HTTP handler.
func NewDashboardHandler(dash dashboard.Service, trigger RefreshTrigger) inbound.DashboardHttpPort {
	return &dashboardHandler{dashboard: dash, trigger: trigger}
}

// Compile-time interface check
var _ inbound.DashboardHttpPort = (*dashboardHandler)(nil)

// GetStats returns the summary for a dashboard view.
//
//	@Summary		Get dashboard stats
//	@Description	Order counts and inventory alerts for the customer, employee or admin dashboard
//	@Tags			Dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Param			view	path		string	true	"Dashboard view"	Enums(customer, employee, admin)
//	@Success		200		{object}	model.Stats
//	@Failure		403		{object}	apperrors.ErrorResponse
//	@Failure		404		{object}	apperrors.ErrorResponse
//	@Router			/dashboard/{view} [get]
func (h *dashboardHandler) GetStats(c *gin.Context) {
	user, ok := GetActingUserFromContext(c)
	if !ok {
		return
	}

	view := model.ViewKind(strings.ToLower(c.Param("view")))
	stats, err := h.dashboard.Stats(c.Request.Context(), view, user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Refresh schedules a refresh of both feeds.
//
//	@Summary		Refresh dashboards
//	@Description	Schedules a refetch of orders and inventory. Staff only.
//	@Tags			Dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Success		202	{object}	map[string]string
//	@Failure		403	{object}	apperrors.ErrorResponse
//	@Router			/dashboard/refresh [post]
func (h *dashboardHandler) Refresh(c *gin.Context) {
	user, ok := GetActingUserFromContext(c)
	if !ok {
		return
	}
	if !requireStaff(c, user) {
		return
	}

	h.trigger.Trigger()
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

// inventoryHandler implements inbound.InventoryHttpPort.
type inventoryHandler struct {
	dashboard      dashboard.Service
	defaultHorizon int
}

// NewInventoryHandler creates a new inventory HTTP handler. The default
// horizon applies when the request does not name one.
func NewInventoryHandler(dash dashboard.Service, defaultHorizon int) inbound.InventoryHttpPort {
	return &inventoryHandler{dashboard: dash, defaultHorizon: defaultHorizon}
}

// Compile-time interface check
var _ inbound.InventoryHttpPort = (*inventoryHandler)(nil)

// ListAlerts returns the catalog badges.
//
//	@Summary		List inventory alerts
//	@Description	Catalog items with low stock, near expiry or expired flags
//	@Tags			Inventory
//	@Produce		json
//	@Security		BearerAuth
//	@Param			horizon_days	query		int	false	"Near-expiry horizon in days"
//	@Success		200				{object}	model.ListResponse[model.InventoryBadge]
//	@Failure		400				{object}	apperrors.ErrorResponse
//	@Failure		403				{object}	apperrors.ErrorResponse
//	@Failure		502				{object}	apperrors.ErrorResponse
//	@Router			/inventory/alerts [get]
func (h *inventoryHandler) ListAlerts(c *gin.Context) {
	user, ok := GetActingUserFromContext(c)
	if !ok {
		return
	}
	if !requireStaff(c, user) {
		return
	}

	horizon := h.defaultHorizon
	if raw := c.Query("horizon_days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			handleError(c, apperrors.BadRequest("horizon_days must be a non-negative integer"))
			return
		}
		horizon = v
	}

	badges, err := h.dashboard.CatalogAlerts(c.Request.Context(), horizon)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewListResponse(badges))
}
