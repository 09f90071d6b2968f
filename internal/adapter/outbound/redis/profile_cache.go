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

const profileKeyPrefix = "session:profile:"

// profileCache implements outbound.ProfileCachePort.
type profileCache struct {
	client   *redis.Client
	prefix   string
	recorder CacheRecorder
}

// NewProfileCache creates a new profile cache adapter.
func NewProfileCache(client *redis.Client, prefix string, recorder CacheRecorder) outbound.ProfileCachePort {
	return &profileCache{client: client, prefix: prefix, recorder: recorder}
}

// Compile-time interface check
var _ outbound.ProfileCachePort = (*profileCache)(nil)

func (c *profileCache) key(digest string) string {
	return c.prefix + profileKeyPrefix + digest
}

func (c *profileCache) GetProfile(ctx context.Context, key string) (model.Session, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.miss()
			return nil, outbound.ErrCacheMiss
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var profile model.Session
	if err := json.Unmarshal(data, &profile); err != nil || profile == nil {
		c.miss()
		return nil, outbound.ErrCacheMiss
	}
	if c.recorder != nil {
		c.recorder.RecordCacheHit("profile")
	}
	return profile, nil
}

func (c *profileCache) SetProfile(ctx context.Context, key string, profile model.Session, ttl time.Duration) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func (c *profileCache) miss() {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss("profile")
	}
}
