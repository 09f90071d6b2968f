package model

import "time"

// ViewKind selects which dashboard a summary is built for.
type ViewKind string

const (
	ViewCustomer ViewKind = "customer"
	ViewEmployee ViewKind = "employee"
	ViewAdmin    ViewKind = "admin"
)

// IsValid checks if the view kind is known.
func (v ViewKind) IsValid() bool {
	switch v {
	case ViewCustomer, ViewEmployee, ViewAdmin:
		return true
	}
	return false
}

// Feed names reported in Stats.FeedErrors.
const (
	FeedOrders    = "orders"
	FeedInventory = "inventory"
)

// OrderCounts counts orders per state.
type OrderCounts struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Delivered  int `json:"delivered"`
	Cancelled  int `json:"cancelled"`
	Active     int `json:"active"`
	Total      int `json:"total"`
}

// ByState returns the count for a single state.
func (c OrderCounts) ByState(s OrderState) int {
	switch s {
	case OrderStatePending:
		return c.Pending
	case OrderStateProcessing:
		return c.Processing
	case OrderStateDelivered:
		return c.Delivered
	case OrderStateCancelled:
		return c.Cancelled
	}
	return 0
}

// AlertCounts counts inventory records per alert flag.
type AlertCounts struct {
	LowStock     int `json:"low_stock"`
	NearExpiry   int `json:"near_expiry"`
	Expired      int `json:"expired"`
	ItemsFlagged int `json:"items_flagged"`
}

// Stats is the summary rendered by a dashboard.
type Stats struct {
	View               ViewKind          `json:"view"`
	Orders             OrderCounts       `json:"orders"`
	Alerts             AlertCounts       `json:"alerts"`
	Critical           bool              `json:"critical"`
	OrdersAvailable    bool              `json:"orders_available"`
	InventoryAvailable bool              `json:"inventory_available"`
	FeedErrors         map[string]string `json:"feed_errors,omitempty"`
	Revenue            *int64            `json:"revenue,omitempty"`
	LastUpdated        time.Time         `json:"last_updated"`
}

// Clone returns a deep copy of the stats.
func (s *Stats) Clone() *Stats {
	if s == nil {
		return nil
	}
	c := *s
	if s.FeedErrors != nil {
		c.FeedErrors = make(map[string]string, len(s.FeedErrors))
		for k, v := range s.FeedErrors {
			c.FeedErrors[k] = v
		}
	}
	if s.Revenue != nil {
		r := *s.Revenue
		c.Revenue = &r
	}
	return &c
}
