package order

import (
	"sync"
	"time"

	"github.com/drogueria/backoffice/internal/model"
)

// View is the shared order collection rendered by the dashboards.
type View interface {
	// Order returns a copy of the order with the given id.
	Order(id string) (*model.Order, bool)

	// Store inserts or replaces an order and returns its new revision.
	Store(o *model.Order) uint64

	// Swap replaces an order only if its revision is still rev.
	Swap(o *model.Order, rev uint64) bool
}

type entry struct {
	order *model.Order
	rev   uint64
}

// Book is an in-memory View safe for concurrent use.
type Book struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	ids      []string
	rev      uint64
	loadedAt time.Time
}

// NewBook creates an empty order book.
func NewBook() *Book {
	return &Book{entries: make(map[string]*entry)}
}

// Order returns a copy of the order with the given id.
func (b *Book) Order(id string) (*model.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[id]
	if !ok {
		return nil, false
	}
	return e.order.Clone(), true
}

// Store inserts or replaces an order.
func (b *Book) Store(o *model.Order) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.storeLocked(o.Clone())
}

// Swap replaces an order only if nothing stored it since rev.
func (b *Book) Swap(o *model.Order, rev uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[o.ID]
	if !ok || e.rev != rev {
		return false
	}
	b.storeLocked(o.Clone())
	return true
}

func (b *Book) storeLocked(o *model.Order) uint64 {
	b.rev++
	if e, ok := b.entries[o.ID]; ok {
		e.order = o
		e.rev = b.rev
		return b.rev
	}
	b.entries[o.ID] = &entry{order: o, rev: b.rev}
	b.ids = append(b.ids, o.ID)
	return b.rev
}

// Replace swaps the whole collection for an authoritative listing.
func (b *Book) Replace(orders []*model.Order, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]*entry, len(orders))
	b.ids = make([]string, 0, len(orders))
	for _, o := range orders {
		if o == nil || o.ID == "" {
			continue
		}
		b.storeLocked(o.Clone())
	}
	b.loadedAt = at
}

// List returns copies of every order in listing order.
func (b *Book) List() []*model.Order {
	return b.filter(func(*model.Order) bool { return true })
}

// ListByCustomer returns copies of the orders owned by the customer.
func (b *Book) ListByCustomer(customerID string) []*model.Order {
	return b.filter(func(o *model.Order) bool { return o.OwnedBy(customerID) })
}

// ListActive returns copies of pending and processing orders.
func (b *Book) ListActive() []*model.Order {
	return b.filter(func(o *model.Order) bool {
		return o.State == model.OrderStatePending || o.State == model.OrderStateProcessing
	})
}

func (b *Book) filter(keep func(*model.Order) bool) []*model.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*model.Order, 0, len(b.ids))
	for _, id := range b.ids {
		if o := b.entries[id].order; keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Len returns the number of orders.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ids)
}

// LoadedAt returns when the last authoritative listing was applied.
func (b *Book) LoadedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadedAt
}

// Compile-time check
var _ View = (*Book)(nil)
