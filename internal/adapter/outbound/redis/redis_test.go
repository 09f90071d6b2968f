package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotice_RoundTrip(t *testing.T) {
	payload, err := encodeNotice("transition_confirmed", time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, payload, `"reason":"transition_confirmed"`)
	assert.Equal(t, "transition_confirmed", decodeNotice(payload))
	assert.Equal(t, "manual", decodeNotice("manual"))
}

func TestDecodeStats(t *testing.T) {
	revenue := int64(7500)
	_, err := decodeStats([]byte("{"))
	assert.Error(t, err)

	stats, err := decodeStats([]byte(`{"view":"admin","orders":{"total":3},"revenue":7500}`))
	require.NoError(t, err)
	assert.Equal(t, model.ViewAdmin, stats.View)
	assert.Equal(t, 3, stats.Orders.Total)
	assert.Equal(t, &revenue, stats.Revenue)
}

// newTestClient connects to REDIS_TEST_ADDR or skips.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDashboardCache_Integration(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	cache := NewDashboardCache(client, "test:"+t.Name()+":", nil)
	require.NoError(t, cache.Invalidate(ctx))

	_, err := cache.GetStats(ctx)
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, cache.SetStats(ctx, &model.Stats{View: model.ViewEmployee, Orders: model.OrderCounts{Total: 4}}, time.Minute))
	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Orders.Total)

	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.GetStats(ctx)
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestRefreshNotifier_Integration(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := NewRefreshNotifier(client, "test:"+t.Name(), zap.NewNop())
	got := make(chan string, 1)
	require.NoError(t, notifier.Subscribe(ctx, func(reason string) { got <- reason }))
	require.NoError(t, notifier.Publish(ctx, "transition_confirmed"))

	select {
	case reason := <-got:
		assert.Equal(t, "transition_confirmed", reason)
	case <-time.After(2 * time.Second):
		t.Fatal("no refresh notice received")
	}
}

func TestProfileCache_Integration(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	cache := NewProfileCache(client, "test:"+t.Name()+":", nil)

	_, err := cache.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	require.NoError(t, cache.SetProfile(ctx, "digest", model.Session{"id": float64(3), "rol": "cliente"}, time.Minute))
	got, err := cache.GetProfile(ctx, "digest")
	require.NoError(t, err)
	assert.Equal(t, "cliente", got["rol"])

	require.NoError(t, client.Set(ctx, "test:"+t.Name()+":session:profile:bad", "{", time.Minute).Err())
	_, err = cache.GetProfile(ctx, "bad")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}
