package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/drogueria/backoffice/docs" // swagger docs

	"github.com/drogueria/backoffice/internal/adapter/outbound/backend"
	"github.com/drogueria/backoffice/internal/domain/access"
	"github.com/drogueria/backoffice/internal/domain/dashboard"
	"github.com/drogueria/backoffice/internal/domain/order"
	"github.com/drogueria/backoffice/internal/infra/config"
	"github.com/drogueria/backoffice/internal/infra/events"
	"github.com/drogueria/backoffice/internal/infra/task"
	"github.com/drogueria/backoffice/internal/port/inbound"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/drogueria/backoffice/internal/utils/metrics"
	"github.com/drogueria/backoffice/internal/utils/middleware"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
	Redis      *goredis.Client
	Bus        *events.Bus

	// Outbound
	Backend      *backend.Client
	Orders       outbound.OrderServicePort
	Inventory    outbound.InventoryServicePort
	Profiles     outbound.ProfileServicePort
	Cache        outbound.DashboardCachePort
	ProfileCache outbound.ProfileCachePort
	Notifier     outbound.RefreshNotifierPort

	// Domains
	Resolver   access.SessionResolver
	Book       *order.Book
	Controller order.StatusController
	Dashboard  dashboard.Service
	Refresher  *task.Refresher

	// HTTP Handlers
	OrderHandler     inbound.OrderHttpPort
	DashboardHandler inbound.DashboardHttpPort
	InventoryHandler inbound.InventoryHttpPort
}

// newDependencies builds the dependency graph by hand, in the order the
// wire injector would.
func newDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	zapLog := ProvideLogger(cfg)
	m := ProvideMetrics(cfg)
	httpClient := ProvideHTTPClient(cfg)
	redis, cleanup := ProvideRedisClient(cfg, zapLog)
	bus := ProvideEventBus(zapLog)

	client, err := ProvideBackendClient(cfg, httpClient, m, zapLog)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	orders := backend.NewOrderService(client)
	inv := backend.NewInventoryService(client)
	profiles := backend.NewProfileService(client)
	cache := ProvideDashboardCache(cfg, redis, m)
	profileCache := ProvideProfileCache(cfg, redis, m)
	notifier := ProvideRefreshNotifier(cfg, redis, zapLog)

	resolver := ProvideSessionResolver(cfg, profiles, profileCache, zapLog)
	book := order.NewBook()
	policy, err := ProvidePolicy(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	controller := ProvideStatusController(cfg, orders, policy, bus, m, zapLog)
	dash := ProvideDashboardService(cfg, orders, inv, cache, book, m, zapLog)
	refresher := ProvideRefresher(cfg, dash, zapLog)

	return &Dependencies{
		Config:           cfg,
		Logger:           zapLog,
		Metrics:          m,
		HTTPClient:       httpClient,
		Redis:            redis,
		Bus:              bus,
		Backend:          client,
		Orders:           orders,
		Inventory:        inv,
		Profiles:         profiles,
		Cache:            cache,
		ProfileCache:     profileCache,
		Notifier:         notifier,
		Resolver:         resolver,
		Book:             book,
		Controller:       controller,
		Dashboard:        dash,
		Refresher:        refresher,
		OrderHandler:     ProvideOrderHandler(controller, book, dash, zapLog),
		DashboardHandler: ProvideDashboardHandler(cfg, dash, bus),
		InventoryHandler: ProvideInventoryHandler(cfg, dash),
	}, cleanup, nil
}

// App represents the application.
type App struct {
	config *config.Config
	deps   *Dependencies
	router *gin.Engine
	logger *zap.Logger

	// Cleanup functions
	cleanupFuncs []func()
	cancel       context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := newDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}
	return newApp(deps, cleanup), nil
}

func newApp(deps *Dependencies, cleanup func()) *App {
	app := &App{
		config:       deps.Config,
		deps:         deps,
		logger:       deps.Logger,
		cleanupFuncs: []func(){cleanup},
	}

	registerRefreshHandlers(deps.Bus, deps.Cache, deps.Notifier, deps.Logger)

	app.router = app.setupRouter()
	app.registerRoutes()
	return app
}

// Start subscribes to refresh notices and starts the refresher.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	err := a.deps.Notifier.Subscribe(ctx, func(reason string) {
		a.logger.Debug("refresh notice received", zap.String("reason", reason))
		a.deps.Refresher.Trigger()
	})
	if err != nil {
		a.cancel()
		return fmt.Errorf("subscribe refresh notices: %w", err)
	}

	a.deps.Refresher.Start(ctx)
	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Server.Mode != "" {
		gin.SetMode(a.config.Server.Mode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.NewCORSConfig(a.config.CORS.AllowOrigins, a.config.CORS.MaxAge)))
	if a.config.Metrics.Enabled {
		r.Use(middleware.Metrics(a.deps.Metrics))
		r.GET(a.config.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Health check endpoint
	r.GET("/health", a.health)

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// health reports liveness with the backend breaker state and cache mode.
func (a *App) health(c *gin.Context) {
	cache := "memory"
	if a.deps.Redis != nil {
		cache = "redis"
	}
	body := gin.H{"status": "ok", "cache": cache}
	if a.deps.Backend != nil {
		body["backend"] = a.deps.Backend.BreakerState().String()
	}
	if loaded := a.deps.Book.LoadedAt(); !loaded.IsZero() {
		body["orders_loaded_at"] = loaded.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

// registerRoutes registers all HTTP routes.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.Session(a.deps.Resolver))

	orders := protected.Group("/orders")
	{
		orders.GET("/active", a.deps.OrderHandler.ListActiveOrders)
		orders.GET("/:id/transitions", a.deps.OrderHandler.GetTransitionOptions)
		orders.POST("/:id/transitions", a.deps.OrderHandler.RequestTransition)
	}

	dash := protected.Group("/dashboard")
	{
		dash.POST("/refresh", a.deps.DashboardHandler.Refresh)
		dash.GET("/:view", a.deps.DashboardHandler.GetStats)
	}

	protected.GET("/inventory/alerts", a.deps.InventoryHandler.ListAlerts)
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.deps.Refresher.Stop()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
