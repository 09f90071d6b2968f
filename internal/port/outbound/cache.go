package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/drogueria/backoffice/internal/model"
)

// ErrCacheMiss is returned when the requested entry is not cached.
var ErrCacheMiss = errors.New("cache miss")

// DashboardCachePort stores the latest global dashboard summary.
type DashboardCachePort interface {
	// GetStats returns the cached summary or ErrCacheMiss.
	GetStats(ctx context.Context) (*model.Stats, error)

	// SetStats stores the summary with TTL.
	SetStats(ctx context.Context, stats *model.Stats, ttl time.Duration) error

	// Invalidate drops the cached summary.
	Invalidate(ctx context.Context) error
}

// RefreshNotifierPort broadcasts refresh requests between service instances.
type RefreshNotifierPort interface {
	// Publish announces that dependent views should refetch.
	Publish(ctx context.Context, reason string) error

	// Subscribe calls handler for every announcement until ctx is done.
	Subscribe(ctx context.Context, handler func(reason string)) error
}
