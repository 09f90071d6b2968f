package backend

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
)

// inventoryService implements outbound.InventoryServicePort over the REST backend.
type inventoryService struct {
	client *Client
}

// NewInventoryService creates an inventory service adapter.
func NewInventoryService(client *Client) outbound.InventoryServicePort {
	return &inventoryService{client: client}
}

// Compile-time interface check
var _ outbound.InventoryServicePort = (*inventoryService)(nil)

func (s *inventoryService) Snapshot(ctx context.Context) ([]*model.InventoryRecord, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(s.client.cfg.PageSize))

	records := make([]*model.InventoryRecord, 0)
	err := s.client.paginate(ctx, "inventory_snapshot", s.client.resolve(s.client.cfg.InventoryPath, query), func(item json.RawMessage) error {
		var w wireInventory
		if err := json.Unmarshal(item, &w); err != nil {
			return err
		}
		if rec := w.toModel(); rec.ID != "" {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
