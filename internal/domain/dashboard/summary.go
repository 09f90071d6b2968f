package dashboard

import (
	"time"

	"github.com/drogueria/backoffice/internal/domain/inventory"
	"github.com/drogueria/backoffice/internal/model"
)

// OrderFeed is the result of fetching orders. Err marks the feed failed.
type OrderFeed struct {
	Orders []*model.Order
	Err    error
}

// AlertFeed is the result of evaluating inventory. Err marks the feed failed.
type AlertFeed struct {
	Alerts map[string]model.AlertSet
	Err    error
}

// Summarize combines both feeds into dashboard stats. A failed feed
// contributes zero counts and is reported in FeedErrors.
func Summarize(orders OrderFeed, alerts AlertFeed, now time.Time) *model.Stats {
	stats := &model.Stats{
		OrdersAvailable:    orders.Err == nil,
		InventoryAvailable: alerts.Err == nil,
		LastUpdated:        now,
	}

	if orders.Err != nil {
		setFeedError(stats, model.FeedOrders, "orders could not be loaded")
	} else {
		var revenue int64
		for _, o := range orders.Orders {
			if o == nil {
				continue
			}
			count(&stats.Orders, o.State)
			if o.State == model.OrderStateDelivered {
				revenue += orderTotal(o)
			}
		}
		stats.Revenue = &revenue
	}

	if alerts.Err != nil {
		setFeedError(stats, model.FeedInventory, "inventory could not be loaded")
	} else {
		stats.Alerts = inventory.CountByFlag(alerts.Alerts)
		stats.Critical = stats.Alerts.LowStock > 0 || stats.Alerts.NearExpiry > 0 || stats.Alerts.Expired > 0
	}
	return stats
}

func setFeedError(s *model.Stats, feed, msg string) {
	if s.FeedErrors == nil {
		s.FeedErrors = make(map[string]string, 2)
	}
	s.FeedErrors[feed] = msg
}

func count(c *model.OrderCounts, s model.OrderState) {
	switch s {
	case model.OrderStatePending:
		c.Pending++
		c.Active++
	case model.OrderStateProcessing:
		c.Processing++
		c.Active++
	case model.OrderStateDelivered:
		c.Delivered++
	case model.OrderStateCancelled:
		c.Cancelled++
	}
	c.Total++
}

func orderTotal(o *model.Order) int64 {
	if o.Total > 0 {
		return o.Total
	}
	return o.ComputedTotal()
}
