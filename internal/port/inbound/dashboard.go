package inbound

import "github.com/gin-gonic/gin"

// DashboardHttpPort defines HTTP handler interface for dashboard summaries.
type DashboardHttpPort interface {
	// GetStats handles GET /dashboard/:view
	GetStats(c *gin.Context)

	// Refresh handles POST /dashboard/refresh
	Refresh(c *gin.Context)
}

// InventoryHttpPort defines HTTP handler interface for inventory alerts.
type InventoryHttpPort interface {
	// ListAlerts handles GET /inventory/alerts
	ListAlerts(c *gin.Context)
}
