package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/drogueria/backoffice/internal/domain/inventory"
	"github.com/drogueria/backoffice/internal/domain/order"
	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Domain errors for dashboards.
var (
	ErrUnknownView   = errors.New("unknown dashboard view")
	ErrViewForbidden = errors.New("dashboard view not allowed for role")
)

// RefreshRecorder receives feed outcomes and alert totals.
type RefreshRecorder interface {
	RecordRefresh(feed string, ok bool)
	SetInventoryAlerts(counts model.AlertCounts)
}

// Config holds dashboard settings.
type Config struct {
	// HorizonDays is the near-expiry horizon used for dashboard alerts.
	HorizonDays int
	// CacheTTL bounds how long a cached summary is served.
	CacheTTL time.Duration
	// Location defines the calendar day used for expiry checks.
	Location *time.Location
	// RefreshTimeout bounds one refresh of both feeds.
	RefreshTimeout time.Duration
}

const defaultRefreshTimeout = 2 * time.Minute

// Service defines the interface for dashboard aggregation.
type Service interface {
	// Refresh fetches both feeds once and rebuilds the global summary.
	Refresh(ctx context.Context) (*model.Stats, error)

	// Stats returns the summary for a dashboard view.
	Stats(ctx context.Context, view model.ViewKind, user model.ActingUser) (*model.Stats, error)

	// ActiveOrders returns the pending and processing orders visible to the user.
	ActiveOrders(ctx context.Context, user model.ActingUser) ([]*model.Order, error)

	// CatalogAlerts evaluates a fresh inventory snapshot with the given horizon.
	CatalogAlerts(ctx context.Context, horizonDays int) ([]model.InventoryBadge, error)
}

// service implements Service.
type service struct {
	orders    outbound.OrderServicePort
	inventory outbound.InventoryServicePort
	cache     outbound.DashboardCachePort
	book      *order.Book
	recorder  RefreshRecorder
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	last  *model.Stats
}

// NewService creates a new dashboard service.
func NewService(
	orders outbound.OrderServicePort,
	inv outbound.InventoryServicePort,
	cache outbound.DashboardCachePort,
	book *order.Book,
	recorder RefreshRecorder,
	cfg Config,
	logger *zap.Logger,
) Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = defaultRefreshTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		orders:    orders,
		inventory: inv,
		cache:     cache,
		book:      book,
		recorder:  recorder,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger.Named("dashboard"),
	}
}

// Refresh rebuilds shared state, so it never runs as the caller. The
// fetch is detached from the caller's cancellation and uses service
// credentials; a caller that gives up only stops waiting.
func (s *service) Refresh(ctx context.Context) (*model.Stats, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(
			requestctx.WithServiceCredentials(context.WithoutCancel(ctx)), s.cfg.RefreshTimeout)
		defer cancel()
		return s.refresh(rctx), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("refresh coalesced")
		}
		return res.Val.(*model.Stats).Clone(), nil
	}
}

// refresh fetches the feeds one after the other. A failed feed never
// prevents the other from being counted.
func (s *service) refresh(ctx context.Context) *model.Stats {
	now := s.now().In(s.cfg.Location)

	orders, orderErr := s.orders.ListOrders(ctx, model.OrderFilter{})
	if orderErr != nil {
		s.logger.Warn("order feed failed", zap.Error(orderErr))
	} else {
		s.book.Replace(orders, now)
	}
	s.record(model.FeedOrders, orderErr)

	var alerts map[string]model.AlertSet
	records, invErr := s.inventory.Snapshot(ctx)
	if invErr != nil {
		s.logger.Warn("inventory feed failed", zap.Error(invErr))
	} else {
		alerts = inventory.Evaluate(records, now, inventory.Thresholds{HorizonDays: s.cfg.HorizonDays})
	}
	s.record(model.FeedInventory, invErr)

	stats := Summarize(OrderFeed{Orders: orders, Err: orderErr}, AlertFeed{Alerts: alerts, Err: invErr}, now)
	if invErr == nil && s.recorder != nil {
		s.recorder.SetInventoryAlerts(stats.Alerts)
	}

	s.mu.Lock()
	carryOver(stats, s.last)
	s.last = stats
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache dashboard stats", zap.Error(err))
		}
	}

	s.logger.Info("dashboard refreshed",
		zap.Int("orders", stats.Orders.Total),
		zap.Int("items_flagged", stats.Alerts.ItemsFlagged),
		zap.Bool("orders_available", stats.OrdersAvailable),
		zap.Bool("inventory_available", stats.InventoryAvailable))
	return stats
}

// carryOver keeps the previous counts for a feed that failed this round.
// Availability flags and feed errors still describe the current round.
func carryOver(stats, prev *model.Stats) {
	if prev == nil {
		return
	}
	if !stats.OrdersAvailable {
		stats.Orders = prev.Orders
		if prev.Revenue != nil {
			revenue := *prev.Revenue
			stats.Revenue = &revenue
		}
	}
	if !stats.InventoryAvailable {
		stats.Alerts = prev.Alerts
		stats.Critical = prev.Critical
	}
}

func (s *service) record(feed string, err error) {
	if s.recorder != nil {
		s.recorder.RecordRefresh(feed, err == nil)
	}
}

func (s *service) Stats(ctx context.Context, view model.ViewKind, user model.ActingUser) (*model.Stats, error) {
	switch view {
	case model.ViewCustomer:
		return s.customerStats(ctx, user)
	case model.ViewEmployee:
		if !user.Role.IsStaff() {
			return nil, fmt.Errorf("%w: %s", ErrViewForbidden, user.Role)
		}
	case model.ViewAdmin:
		if user.Role != model.RoleAdmin {
			return nil, fmt.Errorf("%w: %s", ErrViewForbidden, user.Role)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	stats, err := s.global(ctx)
	if err != nil {
		return nil, err
	}
	stats.View = view
	if view != model.ViewAdmin {
		stats.Revenue = nil
	}
	return stats, nil
}

// global returns the cached summary, refreshing on a miss.
func (s *service) global(ctx context.Context) (*model.Stats, error) {
	if s.cache != nil {
		stats, err := s.cache.GetStats(ctx)
		if err == nil {
			return stats.Clone(), nil
		}
		if !errors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("read cached dashboard stats", zap.Error(err))
			s.mu.RLock()
			last := s.last
			s.mu.RUnlock()
			if last != nil {
				return last.Clone(), nil
			}
		}
	}
	return s.Refresh(ctx)
}

func (s *service) customerStats(ctx context.Context, user model.ActingUser) (*model.Stats, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	loaded := !s.book.LoadedAt().IsZero()

	var feed OrderFeed
	if loaded {
		feed.Orders = s.book.ListByCustomer(user.ID)
	} else {
		feed.Err = errors.New("orders not loaded")
	}

	stats := Summarize(feed, AlertFeed{}, s.book.LoadedAt())
	stats.View = model.ViewCustomer
	stats.Revenue = nil
	stats.InventoryAvailable = false
	return stats, nil
}

func (s *service) ActiveOrders(ctx context.Context, user model.ActingUser) ([]*model.Order, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	active := s.book.ListActive()
	if user.Role.IsStaff() {
		return active, nil
	}
	own := make([]*model.Order, 0, len(active))
	for _, o := range active {
		if o.OwnedBy(user.ID) {
			own = append(own, o)
		}
	}
	return own, nil
}

// ensureLoaded refreshes once if no listing has been applied yet.
func (s *service) ensureLoaded(ctx context.Context) error {
	if !s.book.LoadedAt().IsZero() {
		return nil
	}
	_, err := s.Refresh(ctx)
	return err
}

func (s *service) CatalogAlerts(ctx context.Context, horizonDays int) ([]model.InventoryBadge, error) {
	records, err := s.inventory.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory snapshot: %w", err)
	}
	now := s.now().In(s.cfg.Location)
	alerts := inventory.Evaluate(records, now, inventory.Thresholds{HorizonDays: horizonDays})
	return inventory.Badges(records, alerts), nil
}
