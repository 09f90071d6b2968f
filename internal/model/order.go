package model

import (
	"time"
)

// OrderState represents the lifecycle state of a purchase order.
type OrderState string

const (
	OrderStatePending    OrderState = "pending"
	OrderStateProcessing OrderState = "processing"
	OrderStateDelivered  OrderState = "delivered"
	OrderStateCancelled  OrderState = "cancelled"
)

// String returns the string representation of the state.
func (s OrderState) String() string {
	return string(s)
}

// IsValid checks if the state is one of the known order states.
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStatePending, OrderStateProcessing, OrderStateDelivered, OrderStateCancelled:
		return true
	}
	return false
}

// OrderStates returns every known state in lifecycle order.
func OrderStates() []OrderState {
	return []OrderState{OrderStatePending, OrderStateProcessing, OrderStateDelivered, OrderStateCancelled}
}

// LineItem is a single product line of an order.
// UnitPrice is expressed in minor currency units.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Amount returns quantity times unit price.
func (li LineItem) Amount() int64 {
	return int64(li.Quantity) * li.UnitPrice
}

// HistoryEntry records one applied state change.
// From is empty for the entry that created the order.
type HistoryEntry struct {
	From      OrderState `json:"from,omitempty"`
	To        OrderState `json:"to"`
	Actor     string     `json:"actor,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Comment   string     `json:"comment,omitempty"`
}

// Order is the local view of a backend purchase order.
type Order struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customer_id,omitempty"`
	State      OrderState     `json:"state"`
	LineItems  []LineItem     `json:"line_items"`
	History    []HistoryEntry `json:"history"`
	Total      int64          `json:"total"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Consistent reports whether State agrees with the last history entry.
// An order without history is consistent in any state.
func (o *Order) Consistent() bool {
	if len(o.History) == 0 {
		return true
	}
	return o.History[len(o.History)-1].To == o.State
}

// OwnedBy reports whether the order belongs to the given customer.
func (o *Order) OwnedBy(customerID string) bool {
	return customerID != "" && o.CustomerID == customerID
}

// ComputedTotal sums the line items.
func (o *Order) ComputedTotal() int64 {
	var total int64
	for _, li := range o.LineItems {
		total += li.Amount()
	}
	return total
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.LineItems != nil {
		c.LineItems = make([]LineItem, len(o.LineItems))
		copy(c.LineItems, o.LineItems)
	}
	if o.History != nil {
		c.History = make([]HistoryEntry, len(o.History))
		copy(c.History, o.History)
	}
	return &c
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	States []OrderState
}

// StatePatch is the only payload sent when changing an order's state.
type StatePatch struct {
	State     OrderState
	Comment   string
	Timestamp time.Time
}
