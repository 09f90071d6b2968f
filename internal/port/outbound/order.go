package outbound

import (
	"context"

	"github.com/drogueria/backoffice/internal/model"
)

// OrderServicePort defines the backend order service.
type OrderServicePort interface {
	// ListOrders fetches every order matching the filter, following pagination.
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]*model.Order, error)

	// GetOrder fetches a single order.
	GetOrder(ctx context.Context, id string) (*model.Order, error)

	// PatchState changes an order's state and returns the authoritative record.
	PatchState(ctx context.Context, id string, patch model.StatePatch) (*model.Order, error)
}

// InventoryServicePort defines the backend inventory service.
type InventoryServicePort interface {
	// Snapshot fetches the current inventory records.
	Snapshot(ctx context.Context) ([]*model.InventoryRecord, error)
}
