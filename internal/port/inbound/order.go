package inbound

import "github.com/gin-gonic/gin"

// OrderHttpPort defines HTTP handler interface for order operations.
type OrderHttpPort interface {
	// ListActiveOrders handles GET /orders/active
	ListActiveOrders(c *gin.Context)

	// GetTransitionOptions handles GET /orders/:id/transitions
	GetTransitionOptions(c *gin.Context)

	// RequestTransition handles POST /orders/:id/transitions
	RequestTransition(c *gin.Context)
}
