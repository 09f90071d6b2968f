package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Domains
	"github.com/drogueria/backoffice/internal/domain/access"
	"github.com/drogueria/backoffice/internal/domain/dashboard"
	"github.com/drogueria/backoffice/internal/domain/order"

	// Inbound adapters
	ginadapter "github.com/drogueria/backoffice/internal/adapter/inbound/gin"

	// Ports
	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/inbound"
	"github.com/drogueria/backoffice/internal/port/outbound"

	// Outbound adapters
	"github.com/drogueria/backoffice/internal/adapter/outbound/backend"
	"github.com/drogueria/backoffice/internal/adapter/outbound/memory"
	redisadapter "github.com/drogueria/backoffice/internal/adapter/outbound/redis"

	// Infrastructure
	"github.com/drogueria/backoffice/internal/infra/config"
	"github.com/drogueria/backoffice/internal/infra/events"
	"github.com/drogueria/backoffice/internal/infra/httpclient"
	"github.com/drogueria/backoffice/internal/infra/task"

	// Utils
	"github.com/drogueria/backoffice/internal/utils/logger"
	"github.com/drogueria/backoffice/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideHTTPClient,
	ProvideRedisClient,
	ProvideEventBus,
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) *zap.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(cfg *config.Config) *metrics.Metrics {
	return metrics.New(cfg.Metrics.Namespace)
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideRedisClient creates a Redis client. It returns nil when Redis is
// not configured or unreachable, and the in-memory adapters take over.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (*goredis.Client, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.Timeout,
		ReadTimeout:  cfg.Redis.Timeout,
		WriteTimeout: cfg.Redis.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout(cfg))
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zapLog.Warn("Redis connection failed, continuing with in-memory cache", zap.Error(err))
		_ = client.Close()
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideEventBus creates the in-process event bus.
func ProvideEventBus(zapLog *zap.Logger) *events.Bus {
	return events.NewBus(zapLog)
}

// ===== Backend Providers =====

// BackendSet provides the REST backend adapters.
var BackendSet = wire.NewSet(
	ProvideBackendClient,
	backend.NewOrderService,
	backend.NewInventoryService,
	backend.NewProfileService,
)

// ProvideBackendClient creates the backend client.
func ProvideBackendClient(cfg *config.Config, httpClient *http.Client, m *metrics.Metrics, zapLog *zap.Logger) (*backend.Client, error) {
	return backend.NewClient(httpClient,
		backend.Config{
			BaseURL:       cfg.Backend.BaseURL,
			ServiceToken:  cfg.Backend.ServiceToken,
			OrdersPath:    cfg.Backend.OrdersPath,
			InventoryPath: cfg.Backend.InventoryPath,
			ProfilePath:   cfg.Backend.ProfilePath,
			PageSize:      cfg.Backend.PageSize,
			MaxPages:      cfg.Backend.MaxPages,
			Ordering:      cfg.Backend.Ordering,
		},
		backend.BreakerConfig{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		},
		m, zapLog)
}

// ===== Cache Providers =====

// CacheSet provides the dashboard and profile caches and the refresh notifier.
var CacheSet = wire.NewSet(
	ProvideDashboardCache,
	ProvideProfileCache,
	ProvideRefreshNotifier,
)

// ProvideDashboardCache creates the dashboard cache.
func ProvideDashboardCache(cfg *config.Config, redis *goredis.Client, m *metrics.Metrics) outbound.DashboardCachePort {
	if redis == nil {
		return memory.NewDashboardCache()
	}
	return redisadapter.NewDashboardCache(redis, cfg.Redis.Prefix, m)
}

// ProvideProfileCache creates the verified profile cache.
func ProvideProfileCache(cfg *config.Config, redis *goredis.Client, m *metrics.Metrics) outbound.ProfileCachePort {
	if redis == nil {
		return memory.NewProfileCache()
	}
	return redisadapter.NewProfileCache(redis, cfg.Redis.Prefix, m)
}

// ProvideRefreshNotifier creates the refresh notifier.
func ProvideRefreshNotifier(cfg *config.Config, redis *goredis.Client, zapLog *zap.Logger) outbound.RefreshNotifierPort {
	if redis == nil {
		return memory.NewRefreshNotifier()
	}
	return redisadapter.NewRefreshNotifier(redis, cfg.Redis.Channel, zapLog)
}

// ===== Domain Providers =====

// DomainSet provides the access, order and dashboard domains.
var DomainSet = wire.NewSet(
	ProvideSessionResolver,
	order.NewBook,
	wire.Bind(new(order.View), new(*order.Book)),
	ProvidePolicy,
	ProvideStatusController,
	ProvideDashboardService,
	ProvideRefresher,
)

// ProvideSessionResolver creates the resolver that verifies bearer tokens.
func ProvideSessionResolver(
	cfg *config.Config,
	profiles outbound.ProfileServicePort,
	cache outbound.ProfileCachePort,
	zapLog *zap.Logger,
) access.SessionResolver {
	return access.NewSessionResolver(profiles, cache, cfg.Auth.ProfileTTL, zapLog)
}

// ProvidePolicy builds the transition policy from configuration.
func ProvidePolicy(cfg *config.Config) (*order.Policy, error) {
	states := make([]model.OrderState, 0, len(cfg.Orders.CustomerCancellableStates))
	for _, s := range cfg.Orders.CustomerCancellableStates {
		states = append(states, model.OrderState(strings.ToLower(strings.TrimSpace(s))))
	}
	policy, err := order.NewPolicy(states)
	if err != nil {
		return nil, fmt.Errorf("orders.customer_cancellable_states: %w", err)
	}
	return policy, nil
}

// ProvideStatusController creates the order status controller. Every
// confirmed transition publishes a refresh request on the bus.
func ProvideStatusController(
	cfg *config.Config,
	orders outbound.OrderServicePort,
	policy *order.Policy,
	bus *events.Bus,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) order.StatusController {
	return order.NewStatusController(orders, policy, zapLog,
		order.WithRecorder(m),
		order.WithRefreshHook(newEventTrigger(bus, redisTimeout(cfg), reasonTransition).Trigger),
	)
}

// ProvideDashboardService creates the dashboard service.
func ProvideDashboardService(
	cfg *config.Config,
	orders outbound.OrderServicePort,
	inv outbound.InventoryServicePort,
	cache outbound.DashboardCachePort,
	book *order.Book,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) dashboard.Service {
	return dashboard.NewService(orders, inv, cache, book, m, dashboard.Config{
		HorizonDays:    cfg.Dashboard.HorizonDays,
		CacheTTL:       cfg.Dashboard.CacheTTL,
		Location:       cfg.Location(),
		RefreshTimeout: cfg.Dashboard.RefreshTimeout,
	}, zapLog)
}

// ProvideRefresher creates the scheduled dashboard refresher.
func ProvideRefresher(cfg *config.Config, dash dashboard.Service, zapLog *zap.Logger) *task.Refresher {
	return task.NewRefresher(func(ctx context.Context) error {
		_, err := dash.Refresh(ctx)
		return err
	}, cfg.Dashboard.RefreshInterval, cfg.Dashboard.RefreshTimeout, zapLog)
}

// ===== HTTP Handler Providers =====

// HandlerSet provides the HTTP handlers.
var HandlerSet = wire.NewSet(
	ProvideOrderHandler,
	ProvideDashboardHandler,
	ProvideInventoryHandler,
)

// ProvideOrderHandler creates the order HTTP handler.
func ProvideOrderHandler(controller order.StatusController, view order.View, dash dashboard.Service, zapLog *zap.Logger) inbound.OrderHttpPort {
	return ginadapter.NewOrderHandler(controller, view, dash, zapLog)
}

// ProvideDashboardHandler creates the dashboard HTTP handler. Manual
// refreshes go through the bus so every instance refetches.
func ProvideDashboardHandler(cfg *config.Config, dash dashboard.Service, bus *events.Bus) inbound.DashboardHttpPort {
	return ginadapter.NewDashboardHandler(dash, newEventTrigger(bus, redisTimeout(cfg), reasonManual))
}

// ProvideInventoryHandler creates the inventory HTTP handler.
func ProvideInventoryHandler(cfg *config.Config, dash dashboard.Service) inbound.InventoryHttpPort {
	return ginadapter.NewInventoryHandler(dash, cfg.Catalog.HorizonDays)
}

// AppSet combines every provider set.
var AppSet = wire.NewSet(
	InfraSet,
	BackendSet,
	CacheSet,
	DomainSet,
	HandlerSet,
)
