package memory

import (
	"context"
	"sync"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
)

type profileEntry struct {
	profile model.Session
	expires time.Time
}

// profileCache implements outbound.ProfileCachePort in memory.
type profileCache struct {
	mu      sync.Mutex
	entries map[string]profileEntry
	now     func() time.Time
}

// NewProfileCache creates an in-memory profile cache.
func NewProfileCache() outbound.ProfileCachePort {
	return &profileCache{entries: make(map[string]profileEntry), now: time.Now}
}

// Compile-time interface check
var _ outbound.ProfileCachePort = (*profileCache)(nil)

func (c *profileCache) GetProfile(_ context.Context, key string) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, outbound.ErrCacheMiss
	}
	return copySession(e.profile), nil
}

func (c *profileCache) SetProfile(_ context.Context, key string, profile model.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// Drop expired entries so abandoned tokens do not accumulate.
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = profileEntry{profile: copySession(profile), expires: now.Add(ttl)}
	return nil
}

func copySession(s model.Session) model.Session {
	out := make(model.Session, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
