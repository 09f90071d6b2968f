package order

import (
	"testing"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook_StoreAndOrder(t *testing.T) {
	b := NewBook()
	o := pendingOrder("o1")
	b.Store(o)

	got, ok := b.Order("o1")
	require.True(t, ok)
	assert.Equal(t, o, got)

	// Returned orders are copies.
	got.State = model.OrderStateCancelled
	got.History[0].Comment = "changed"
	again, _ := b.Order("o1")
	assert.Equal(t, model.OrderStatePending, again.State)
	assert.Empty(t, again.History[0].Comment)

	_, ok = b.Order("missing")
	assert.False(t, ok)
}

func TestBook_Swap(t *testing.T) {
	b := NewBook()
	rev := b.Store(pendingOrder("o1"))

	updated := pendingOrder("o1")
	updated.State = model.OrderStateProcessing
	assert.True(t, b.Swap(updated, rev))

	stale := pendingOrder("o1")
	assert.False(t, b.Swap(stale, rev), "revision moved on after the first swap")

	got, _ := b.Order("o1")
	assert.Equal(t, model.OrderStateProcessing, got.State)

	assert.False(t, b.Swap(pendingOrder("o2"), 1))
}

func TestBook_Replace(t *testing.T) {
	b := NewBook()
	b.Store(pendingOrder("old"))

	delivered := pendingOrder("o2")
	delivered.State = model.OrderStateDelivered
	other := pendingOrder("o3")
	other.CustomerID = "c9"

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	b.Replace([]*model.Order{pendingOrder("o1"), delivered, other, nil, {ID: ""}}, at)

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, at, b.LoadedAt())
	_, ok := b.Order("old")
	assert.False(t, ok)

	ids := func(orders []*model.Order) []string {
		out := make([]string, len(orders))
		for i, o := range orders {
			out[i] = o.ID
		}
		return out
	}
	assert.Equal(t, []string{"o1", "o2", "o3"}, ids(b.List()))
	assert.Equal(t, []string{"o1", "o3"}, ids(b.ListActive()))
	assert.Equal(t, []string{"o1", "o2"}, ids(b.ListByCustomer("c1")))
	assert.Empty(t, b.ListByCustomer(""))
}
