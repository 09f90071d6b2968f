package app

import (
	"context"
	"time"

	"github.com/drogueria/backoffice/internal/infra/config"
	"github.com/drogueria/backoffice/internal/infra/events"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"go.uber.org/zap"
)

// Refresh reasons carried by RefreshRequested events.
const (
	reasonTransition = "order_transition"
	reasonManual     = "manual"
)

const defaultRedisTimeout = 3 * time.Second

// redisTimeout bounds cache and pub/sub calls made outside a request.
func redisTimeout(cfg *config.Config) time.Duration {
	if cfg.Redis.Timeout > 0 {
		return cfg.Redis.Timeout
	}
	return defaultRedisTimeout
}

// eventTrigger publishes a RefreshRequested event on every Trigger call.
type eventTrigger struct {
	bus     *events.Bus
	timeout time.Duration
	reason  string
}

func newEventTrigger(bus *events.Bus, timeout time.Duration, reason string) *eventTrigger {
	return &eventTrigger{bus: bus, timeout: timeout, reason: reason}
}

// Trigger publishes the event with its own deadline so a cancelled
// request does not cancel the broadcast.
func (t *eventTrigger) Trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	t.bus.Publish(ctx, events.NewRefreshRequested(t.reason))
}

// registerRefreshHandlers makes RefreshRequested drop the cached summary
// and broadcast a notice. Subscribers of the notifier schedule the refetch.
func registerRefreshHandlers(bus *events.Bus, cache outbound.DashboardCachePort, notifier outbound.RefreshNotifierPort, zapLog *zap.Logger) {
	bus.Register(events.NewHandlerFunc([]string{events.TypeRefreshRequested}, func(ctx context.Context, _ events.Event) error {
		return cache.Invalidate(ctx)
	}))
	bus.Register(events.NewHandlerFunc([]string{events.TypeRefreshRequested}, func(ctx context.Context, e events.Event) error {
		reason := e.EventType()
		if rr, ok := e.(events.RefreshRequested); ok {
			reason = rr.Reason
		}
		zapLog.Debug("broadcasting refresh", zap.String("reason", reason))
		return notifier.Publish(ctx, reason)
	}))
}
