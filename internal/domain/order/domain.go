package order

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	"go.uber.org/zap"
)

// Transition outcomes reported to the recorder.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeDiscarded = "discarded"
)

// TransitionRecorder receives one event per settled transition request.
type TransitionRecorder interface {
	RecordTransition(from, to, outcome string)
}

// StatusController defines the interface for order transition logic.
type StatusController interface {
	// Begin validates the request and applies it optimistically to the view.
	// The returned Tentative must be reconciled or discarded.
	Begin(ctx context.Context, view View, ord *model.Order, target model.OrderState, user model.ActingUser, comment string) (*Tentative, error)

	// RequestTransition runs Begin and Reconcile in one call.
	RequestTransition(ctx context.Context, view View, ord *model.Order, target model.OrderState, user model.ActingUser, comment string) (*model.Order, error)

	// Resolve returns the order from the view, fetching it when missing.
	Resolve(ctx context.Context, view View, id string) (*model.Order, error)

	// Options returns the targets the user may request for the order.
	Options(user model.ActingUser, ord *model.Order) []model.OrderState
}

// Option configures the status controller.
type Option func(*statusController)

// WithRefreshHook sets a function called after every confirmed transition.
func WithRefreshHook(fn func()) Option {
	return func(c *statusController) { c.refresh = fn }
}

// WithRecorder sets the transition outcome recorder.
func WithRecorder(r TransitionRecorder) Option {
	return func(c *statusController) { c.recorder = r }
}

// WithClock overrides the time source used for history entries.
func WithClock(now func() time.Time) Option {
	return func(c *statusController) { c.now = now }
}

// statusController implements StatusController.
type statusController struct {
	orders   outbound.OrderServicePort
	policy   *Policy
	refresh  func()
	recorder TransitionRecorder
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

// NewStatusController creates a new order status controller.
func NewStatusController(orders outbound.OrderServicePort, policy *Policy, logger *zap.Logger, opts ...Option) StatusController {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &statusController{
		orders:   orders,
		policy:   policy,
		now:      time.Now,
		logger:   logger.Named("order"),
		inflight: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *statusController) Options(user model.ActingUser, ord *model.Order) []model.OrderState {
	return c.policy.AllowedFor(user, ord)
}

func (c *statusController) Resolve(ctx context.Context, view View, id string) (*model.Order, error) {
	if id == "" {
		return nil, newTransitionError(KindInvalidReference, nil, "", "the order has no identifier")
	}
	if ord, ok := view.Order(id); ok {
		return ord, nil
	}
	ord, err := c.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, classify(err, &model.Order{ID: id}, "")
	}
	view.Store(ord)
	return ord.Clone(), nil
}

func (c *statusController) RequestTransition(ctx context.Context, view View, ord *model.Order, target model.OrderState, user model.ActingUser, comment string) (*model.Order, error) {
	t, err := c.Begin(ctx, view, ord, target, user, comment)
	if err != nil {
		return nil, err
	}
	return t.Reconcile(ctx)
}

func (c *statusController) Begin(ctx context.Context, view View, ord *model.Order, target model.OrderState, user model.ActingUser, comment string) (*Tentative, error) {
	release := func() {}
	if ord != nil && ord.ID != "" {
		r, err := c.acquire(ctx, ord.ID)
		if err != nil {
			te := newTransitionError(KindTransportFailure, ord, target, "gave up waiting for an earlier change to this order")
			te.Err = err
			c.record(te.From, target, OutcomeRejected)
			return nil, te
		}
		release = r

		// An earlier transition may have moved the order while we waited.
		if current, ok := view.Order(ord.ID); ok {
			ord = current
		}
	}

	if te := c.policy.Check(user, ord, target); te != nil {
		release()
		c.record(te.From, target, OutcomeRejected)
		c.logger.Info("transition rejected",
			zap.String("order_id", te.OrderID),
			zap.String("from", te.From.String()),
			zap.String("to", target.String()),
			zap.String("role", user.Role.String()),
			zap.String("kind", string(te.Kind)))
		return nil, te
	}

	now := c.now()
	previous := ord.Clone()
	next := ord.Clone()
	next.State = target
	next.UpdatedAt = now
	next.History = append(next.History, model.HistoryEntry{
		From:      previous.State,
		To:        target,
		Actor:     user.ID,
		Timestamp: now,
		Comment:   comment,
	})
	rev := view.Store(next)

	c.logger.Debug("transition applied optimistically",
		zap.String("order_id", next.ID),
		zap.String("from", previous.State.String()),
		zap.String("to", target.String()))

	return &Tentative{
		c:        c,
		view:     view,
		previous: previous,
		next:     next,
		user:     user,
		comment:  comment,
		at:       now,
		rev:      rev,
		release:  release,
	}, nil
}

// acquire waits until no other transition on the order is in flight.
func (c *statusController) acquire(ctx context.Context, id string) (func(), error) {
	for {
		c.mu.Lock()
		wait, busy := c.inflight[id]
		if !busy {
			done := make(chan struct{})
			c.inflight[id] = done
			c.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					c.mu.Lock()
					delete(c.inflight, id)
					c.mu.Unlock()
					close(done)
				})
			}, nil
		}
		c.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *statusController) record(from, to model.OrderState, outcome string) {
	if c.recorder != nil {
		c.recorder.RecordTransition(from.String(), to.String(), outcome)
	}
}

// Tentative is a transition applied locally but not yet confirmed.
type Tentative struct {
	c        *statusController
	view     View
	previous *model.Order
	next     *model.Order
	user     model.ActingUser
	comment  string
	at       time.Time
	rev      uint64
	release  func()

	mu      sync.Mutex
	settled bool
}

// Order returns the optimistic order.
func (t *Tentative) Order() *model.Order {
	return t.next.Clone()
}

// Previous returns the order as it was before the transition.
func (t *Tentative) Previous() *model.Order {
	return t.previous.Clone()
}

// Reconcile sends the change to the order service. On success the
// authoritative record replaces the optimistic one. On failure the view
// is rolled back and the returned error tells the caller to reload.
func (t *Tentative) Reconcile(ctx context.Context) (*model.Order, error) {
	if !t.settle() {
		return nil, ErrAlreadySettled
	}
	defer t.release()

	c := t.c
	from, to := t.previous.State, t.next.State
	confirmed, err := c.orders.PatchState(ctx, t.next.ID, model.StatePatch{
		State:     to,
		Comment:   t.comment,
		Timestamp: t.at,
	})
	if err != nil {
		rolledBack := t.view.Swap(t.previous, t.rev)
		te := classify(err, t.previous, to)
		c.record(from, to, OutcomeFailed)
		c.logger.Warn("transition failed",
			zap.String("order_id", t.next.ID),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("kind", string(te.Kind)),
			zap.Bool("rolled_back", rolledBack),
			zap.Error(err))
		return nil, te
	}

	if confirmed == nil {
		confirmed = t.next.Clone()
	}
	if confirmed.ID == "" {
		confirmed.ID = t.next.ID
	}
	if len(confirmed.History) < len(t.next.History) {
		confirmed.History = t.next.Clone().History
	}
	t.view.Store(confirmed)
	c.record(from, to, OutcomeConfirmed)
	c.logger.Info("transition confirmed",
		zap.String("order_id", confirmed.ID),
		zap.String("from", from.String()),
		zap.String("to", confirmed.State.String()),
		zap.String("actor", t.user.ID))

	if c.refresh != nil {
		c.refresh()
	}
	return confirmed.Clone(), nil
}

// Discard abandons the transition without contacting the order service.
func (t *Tentative) Discard() error {
	if !t.settle() {
		return ErrAlreadySettled
	}
	defer t.release()
	t.view.Swap(t.previous, t.rev)
	t.c.record(t.previous.State, t.next.State, OutcomeDiscarded)
	return nil
}

func (t *Tentative) settle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.settled {
		return false
	}
	t.settled = true
	return true
}

// IsTransitionError reports whether err is a TransitionError and returns it.
func IsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
