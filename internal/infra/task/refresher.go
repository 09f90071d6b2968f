package task

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RefreshFunc performs one refresh cycle.
type RefreshFunc func(ctx context.Context) error

// Refresher runs a refresh periodically and on demand. Triggers that arrive
// while a refresh is running collapse into a single follow-up run.
type Refresher struct {
	refresh  RefreshFunc
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	trigger chan struct{}
	cancel  context.CancelFunc

	// Lifecycle
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewRefresher creates a refresher. A zero interval disables the ticker so
// only triggers cause refreshes. A zero timeout leaves runs unbounded.
func NewRefresher(refresh RefreshFunc, interval, timeout time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		refresh:  refresh,
		interval: interval,
		timeout:  timeout,
		logger:   logger.Named("refresher"),
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Start runs an initial refresh and then the refresh loop in the background.
func (r *Refresher) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		ctx, r.cancel = context.WithCancel(ctx)
		r.logger.Info("starting refresher", zap.Duration("interval", r.interval))

		r.wg.Add(1)
		go r.loop(ctx)
	})
}

// Trigger requests a refresh without blocking.
func (r *Refresher) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Stop stops the loop and waits for an in-flight refresh to return.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		r.logger.Info("stopping refresher")
		close(r.stopCh)
		if r.cancel != nil {
			r.cancel()
		}
		r.wg.Wait()
		r.logger.Info("refresher stopped")
	})
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.run(ctx, "startup")
	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-tick:
			r.run(ctx, "interval")
		case <-r.trigger:
			r.run(ctx, "trigger")
		}
	}
}

func (r *Refresher) run(ctx context.Context, cause string) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := r.refresh(ctx); err != nil {
		r.logger.Warn("refresh failed", zap.String("cause", cause), zap.Error(err))
		return
	}
	r.logger.Debug("refresh completed", zap.String("cause", cause), zap.Duration("duration", time.Since(start)))
}
