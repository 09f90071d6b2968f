package memory

import (
	"context"
	"sync"

	"github.com/drogueria/backoffice/internal/port/outbound"
)

// refreshNotifier implements outbound.RefreshNotifierPort within one process.
type refreshNotifier struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]func(reason string)
}

// NewRefreshNotifier creates an in-process refresh notifier.
func NewRefreshNotifier() outbound.RefreshNotifierPort {
	return &refreshNotifier{handlers: make(map[int]func(string))}
}

// Compile-time interface check
var _ outbound.RefreshNotifierPort = (*refreshNotifier)(nil)

// Publish delivers the notice synchronously to every live subscriber.
func (n *refreshNotifier) Publish(_ context.Context, reason string) error {
	n.mu.RLock()
	handlers := make([]func(string), 0, len(n.handlers))
	for _, h := range n.handlers {
		handlers = append(handlers, h)
	}
	n.mu.RUnlock()

	for _, h := range handlers {
		h(reason)
	}
	return nil
}

func (n *refreshNotifier) Subscribe(ctx context.Context, handler func(reason string)) error {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.handlers[id] = handler
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.handlers, id)
		n.mu.Unlock()
	}()
	return nil
}
