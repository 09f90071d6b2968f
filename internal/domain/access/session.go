package access

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SessionResolver turns a bearer token into a session snapshot the
// backend vouches for.
type SessionResolver interface {
	// Resolve returns the caller's profile for token, with "token" set.
	Resolve(ctx context.Context, token string) (model.Session, error)
}

// sessionResolver implements SessionResolver.
type sessionResolver struct {
	profiles outbound.ProfileServicePort
	cache    outbound.ProfileCachePort
	ttl      time.Duration
	logger   *zap.Logger

	group singleflight.Group
}

// NewSessionResolver creates a resolver backed by the profile endpoint.
// Verified profiles are cached for ttl; a zero ttl disables the cache.
func NewSessionResolver(
	profiles outbound.ProfileServicePort,
	cache outbound.ProfileCachePort,
	ttl time.Duration,
	logger *zap.Logger,
) SessionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionResolver{profiles: profiles, cache: cache, ttl: ttl, logger: logger}
}

// Compile-time interface check
var _ SessionResolver = (*sessionResolver)(nil)

func (r *sessionResolver) Resolve(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return nil, &outbound.ServiceError{Op: "resolve_session", Message: "no bearer token", Err: outbound.ErrSessionExpired}
	}
	key := tokenDigest(token)

	if r.cache != nil && r.ttl > 0 {
		profile, err := r.cache.GetProfile(ctx, key)
		if err == nil {
			return withToken(profile, token), nil
		}
		if !errors.Is(err, outbound.ErrCacheMiss) {
			r.logger.Warn("profile cache read failed", zap.Error(err))
		}
	}

	// Concurrent requests with the same token share one lookup, so one
	// caller going away must not fail the others.
	ch := r.group.DoChan(key, func() (any, error) {
		fetchCtx := requestctx.WithAuthToken(context.WithoutCancel(ctx), token)
		profile, err := r.profiles.GetProfile(fetchCtx)
		if err != nil {
			return nil, err
		}
		if r.cache != nil && r.ttl > 0 {
			if err := r.cache.SetProfile(fetchCtx, key, profile, r.ttl); err != nil {
				r.logger.Warn("profile cache write failed", zap.Error(err))
			}
		}
		return profile, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return withToken(res.Val.(model.Session), token), nil
	}
}

// withToken copies profile so shared results are never mutated.
func withToken(profile model.Session, token string) model.Session {
	out := make(model.Session, len(profile)+1)
	for k, v := range profile {
		out[k] = v
	}
	out["token"] = token
	return out
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
