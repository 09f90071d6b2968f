package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/redis/go-redis/v9"
)

const dashboardStatsKey = "dashboard:stats"

// CacheRecorder receives cache hit and miss events.
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// dashboardCache implements outbound.DashboardCachePort.
type dashboardCache struct {
	client   *redis.Client
	prefix   string
	recorder CacheRecorder
}

// NewDashboardCache creates a new dashboard cache adapter.
func NewDashboardCache(client *redis.Client, prefix string, recorder CacheRecorder) outbound.DashboardCachePort {
	return &dashboardCache{client: client, prefix: prefix, recorder: recorder}
}

// Compile-time interface check
var _ outbound.DashboardCachePort = (*dashboardCache)(nil)

func (c *dashboardCache) key() string {
	return c.prefix + dashboardStatsKey
}

func (c *dashboardCache) GetStats(ctx context.Context) (*model.Stats, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.miss()
			return nil, outbound.ErrCacheMiss
		}
		return nil, fmt.Errorf("get dashboard stats: %w", err)
	}

	stats, err := decodeStats(data)
	if err != nil {
		// A corrupt entry behaves like a miss.
		c.miss()
		return nil, outbound.ErrCacheMiss
	}
	if c.recorder != nil {
		c.recorder.RecordCacheHit("dashboard")
	}
	return stats, nil
}

func (c *dashboardCache) SetStats(ctx context.Context, stats *model.Stats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode dashboard stats: %w", err)
	}
	if err := c.client.Set(ctx, c.key(), data, ttl).Err(); err != nil {
		return fmt.Errorf("set dashboard stats: %w", err)
	}
	return nil
}

func (c *dashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key()).Err()
}

func (c *dashboardCache) miss() {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss("dashboard")
	}
}

func decodeStats(data []byte) (*model.Stats, error) {
	var stats model.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
