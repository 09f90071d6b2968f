package access

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context) (model.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Session), args.Error(1)
}

type fakeProfileCache struct {
	mu      sync.Mutex
	entries map[string]model.Session
	err     error
}

func (c *fakeProfileCache) GetProfile(_ context.Context, key string) (model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.entries[key]
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	return p, nil
}

func (c *fakeProfileCache) SetProfile(_ context.Context, key string, profile model.Session, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]model.Session)
	}
	c.entries[key] = profile
	return nil
}

func withCallerToken(token string) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return requestctx.AuthToken(ctx) == token && !requestctx.UsesServiceCredentials(ctx)
	})
}

func TestSessionResolver_Resolve(t *testing.T) {
	t.Run("uses the backend profile for the token", func(t *testing.T) {
		profiles := new(MockProfileService)
		cache := &fakeProfileCache{}
		r := NewSessionResolver(profiles, cache, time.Minute, zap.NewNop())
		profiles.On("GetProfile", withCallerToken("tok")).
			Return(model.Session{"id": float64(42), "rol": "cliente"}, nil).Once()

		session, err := r.Resolve(context.Background(), "tok")

		require.NoError(t, err)
		assert.Equal(t, "tok", session["token"])
		assert.Equal(t, model.ActingUser{ID: "42", Role: model.RoleCustomer}, ActingUserFrom(session))

		again, err := r.Resolve(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, session, again)
		profiles.AssertExpectations(t)
		assert.NotContains(t, cache.entries, "tok", "the cache is keyed by digest")
		assert.Len(t, cache.entries, 1)
	})

	t.Run("a forged staff token cannot open staff views", func(t *testing.T) {
		profiles := new(MockProfileService)
		r := NewSessionResolver(profiles, nil, 0, nil)

		// An unsigned token claiming the admin role, as a client could craft.
		forged := "eyJhbGciOiJub25lIn0.eyJyb2wiOiJhZG1pbiIsInVzZXJfaWQiOjF9."
		profiles.On("GetProfile", withCallerToken(forged)).
			Return(nil, &outbound.ServiceError{Op: "get_profile", StatusCode: 401, Err: outbound.ErrSessionExpired})

		_, err := r.Resolve(context.Background(), forged)
		assert.ErrorIs(t, err, outbound.ErrSessionExpired)
	})

	t.Run("profile without a role stays customer", func(t *testing.T) {
		profiles := new(MockProfileService)
		r := NewSessionResolver(profiles, nil, 0, nil)
		profiles.On("GetProfile", mock.Anything).Return(model.Session{"id": float64(8)}, nil)

		session, err := r.Resolve(context.Background(), "opaque-token")

		require.NoError(t, err)
		assert.Equal(t, model.RoleCustomer, ResolveRole(session))
	})

	t.Run("missing token", func(t *testing.T) {
		r := NewSessionResolver(new(MockProfileService), nil, 0, nil)
		_, err := r.Resolve(context.Background(), "")
		assert.ErrorIs(t, err, outbound.ErrSessionExpired)
	})

	t.Run("cache failures fall through to the backend", func(t *testing.T) {
		profiles := new(MockProfileService)
		cache := &fakeProfileCache{err: errors.New("redis down")}
		r := NewSessionResolver(profiles, cache, time.Minute, nil)
		profiles.On("GetProfile", mock.Anything).Return(model.Session{"id": float64(3), "rol": "admin"}, nil)

		session, err := r.Resolve(context.Background(), "tok")

		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, ResolveRole(session))
	})

	t.Run("cached profiles are not mutated by callers", func(t *testing.T) {
		profiles := new(MockProfileService)
		cache := &fakeProfileCache{}
		r := NewSessionResolver(profiles, cache, time.Minute, nil)
		profiles.On("GetProfile", mock.Anything).Return(model.Session{"id": float64(3)}, nil).Once()

		first, err := r.Resolve(context.Background(), "tok")
		require.NoError(t, err)
		first["rol"] = "admin"

		second, err := r.Resolve(context.Background(), "tok")
		require.NoError(t, err)
		assert.NotContains(t, second, "rol")
	})

	t.Run("a canceled caller does not cancel the shared lookup", func(t *testing.T) {
		profiles := new(MockProfileService)
		r := NewSessionResolver(profiles, nil, 0, nil)
		release := make(chan struct{})
		started := make(chan struct{})
		var once sync.Once
		profiles.On("GetProfile", mock.Anything).
			Run(func(args mock.Arguments) {
				once.Do(func() { close(started) })
				<-release
				assert.NoError(t, args.Get(0).(context.Context).Err())
			}).
			Return(model.Session{"id": float64(1)}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := r.Resolve(ctx, "tok")
			errCh <- err
		}()
		<-started

		okCh := make(chan error, 1)
		go func() {
			_, err := r.Resolve(context.Background(), "tok")
			okCh <- err
		}()

		cancel()
		assert.ErrorIs(t, <-errCh, context.Canceled)
		close(release)
		assert.NoError(t, <-okCh)
	})
}
