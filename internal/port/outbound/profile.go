package outbound

import (
	"context"
	"time"

	"github.com/drogueria/backoffice/internal/model"
)

// ProfileServicePort reads the authenticated user's profile from the backend.
type ProfileServicePort interface {
	// GetProfile returns the profile of the caller whose token is on ctx.
	GetProfile(ctx context.Context) (model.Session, error)
}

// ProfileCachePort keeps recently verified profiles keyed by token digest.
type ProfileCachePort interface {
	// GetProfile returns the cached profile or ErrCacheMiss.
	GetProfile(ctx context.Context, key string) (model.Session, error)

	// SetProfile stores the profile with TTL.
	SetProfile(ctx context.Context, key string, profile model.Session, ttl time.Duration) error
}
