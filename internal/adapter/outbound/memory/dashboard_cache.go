// Package memory provides in-process adapters used when Redis is not configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
)

// dashboardCache implements outbound.DashboardCachePort in memory.
type dashboardCache struct {
	mu      sync.RWMutex
	stats   *model.Stats
	expires time.Time
	now     func() time.Time
}

// NewDashboardCache creates an in-memory dashboard cache.
func NewDashboardCache() outbound.DashboardCachePort {
	return &dashboardCache{now: time.Now}
}

// Compile-time interface check
var _ outbound.DashboardCachePort = (*dashboardCache)(nil)

func (c *dashboardCache) GetStats(_ context.Context) (*model.Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stats == nil || (!c.expires.IsZero() && !c.now().Before(c.expires)) {
		return nil, outbound.ErrCacheMiss
	}
	return c.stats.Clone(), nil
}

func (c *dashboardCache) SetStats(_ context.Context, stats *model.Stats, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats.Clone()
	c.expires = time.Time{}
	if ttl > 0 {
		c.expires = c.now().Add(ttl)
	}
	return nil
}

func (c *dashboardCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	return nil
}
