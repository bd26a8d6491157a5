// Package reconciler keeps the locally cached order list in sync with the
// backend by polling, and drives the user-initiated transitions (cancel,
// mark-received) of the order state machine. The backend stays
// authoritative: no transition is applied locally before it confirms.
package reconciler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

const DefaultInterval = 10 * time.Second

var (
	ErrReasonRequired = errors.New("a cancellation reason is required")
	ErrUnknownOrder   = errors.New("order not found")
	ErrNotCancellable = errors.New("only pending orders can be cancelled")
	ErrNotReceivable  = errors.New("only shipped orders can be marked received")
	ErrActionInFlight = errors.New("an action for this order is already in progress")
)

// CancelReasons is the enumerated reason list offered to the buyer. Free
// text is accepted as well; the engine only requires it to be non-empty.
var CancelReasons = []string{
	"Changed my mind",
	"Ordered by mistake",
	"Found a better price",
	"Delivery takes too long",
	"Other",
}

// OrderBackend is the slice of the backend client the reconciler consumes.
type OrderBackend interface {
	OrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	CancelOrder(ctx context.Context, orderRef, reason string) error
	UpdateOrderStatus(ctx context.Context, orderRef string, status domain.OrderStatus) error
}

// StatusFilter selects a derived view of the cached orders. The zero value
// (FilterAll) passes everything.
type StatusFilter string

const FilterAll StatusFilter = ""

func (f StatusFilter) matches(o domain.Order) bool {
	return f == FilterAll || domain.OrderStatus(f) == o.Status
}

// Reconciler polls the backend for one buyer's orders. All fetches run
// inside a single loop, so a refresh triggered by a completed action can
// never be overwritten by an older poll response arriving late.
type Reconciler struct {
	backend  OrderBackend
	buyerID  string
	interval time.Duration
	logger   zerolog.Logger

	cancel  context.CancelFunc
	done    chan struct{}
	refresh chan struct{}

	mu       sync.RWMutex
	orders   []domain.Order
	version  uint64
	loaded   bool
	lastErr  error
	inflight map[string]struct{}
}

func New(backend OrderBackend, buyerID string, interval time.Duration, logger zerolog.Logger) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reconciler{
		backend:  backend,
		buyerID:  buyerID,
		interval: interval,
		logger:   logger.With().Str("component", "reconciler").Str("buyer_id", buyerID).Logger(),
		refresh:  make(chan struct{}, 1),
		inflight: make(map[string]struct{}),
	}
}

// Start launches the polling loop: one immediate fetch, then one per tick.
// The loop owns every cache write; Stop tears it down and no result that
// arrives afterwards is ever applied.
func (r *Reconciler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)
}

// Stop cancels the polling loop and waits for it to exit.
func (r *Reconciler) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.done)

	r.fetch(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.refresh:
			r.fetch(ctx)
		case <-ticker.C:
			r.fetch(ctx)
		}
	}
}

func (r *Reconciler) fetch(ctx context.Context) {
	orders, err := r.backend.OrdersByBuyer(ctx, r.buyerID)
	if ctx.Err() != nil {
		// Torn down while the request was in flight; drop the result.
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		// Keep the stale cache visible; the next tick retries.
		r.lastErr = err
		r.logger.Warn().Err(err).Msg("order fetch failed, serving cached orders")
		return
	}

	r.lastErr = nil
	r.loaded = true
	if !domain.OrdersEqual(r.orders, orders) {
		r.orders = orders
		r.version++
	}
}

// requestRefresh asks the loop for an out-of-band fetch. The channel has
// capacity one, so coalescing concurrent requests is fine: one fetch
// serves them all.
func (r *Reconciler) requestRefresh() {
	select {
	case r.refresh <- struct{}{}:
	default:
	}
}

// Orders returns a filtered copy of the cache. Filtering never mutates it.
func (r *Reconciler) Orders(filter StatusFilter) []domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// Loaded reports whether at least one fetch has succeeded.
func (r *Reconciler) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// LastError is the recoverable error of the most recent failed fetch, or
// nil after a successful one.
func (r *Reconciler) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Order looks up a cached order by ref.
func (r *Reconciler) Order(orderRef string) (domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.OrderRef == orderRef {
			return o, true
		}
	}
	return domain.Order{}, false
}

// Cancel submits a cancellation for a pending order. While one attempt is
// outstanding a second one is refused; whether a cancel on an
// already-cancelled order succeeds is the backend's call. On success the
// loop re-fetches so the buyer sees the confirmed state.
func (r *Reconciler) Cancel(ctx context.Context, orderRef, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	order, ok := r.Order(orderRef)
	if !ok {
		return ErrUnknownOrder
	}
	if order.Status != domain.OrderStatusPending {
		return ErrNotCancellable
	}

	if !r.begin(orderRef) {
		return ErrActionInFlight
	}
	defer r.end(orderRef)

	if err := r.backend.CancelOrder(ctx, orderRef, reason); err != nil {
		return err
	}

	r.requestRefresh()
	return nil
}

// MarkReceived confirms delivery of a shipped order, completing it.
func (r *Reconciler) MarkReceived(ctx context.Context, orderRef string) error {
	order, ok := r.Order(orderRef)
	if !ok {
		return ErrUnknownOrder
	}
	if order.Status != domain.OrderStatusShipped {
		return ErrNotReceivable
	}

	if !r.begin(orderRef) {
		return ErrActionInFlight
	}
	defer r.end(orderRef)

	if err := r.backend.UpdateOrderStatus(ctx, orderRef, domain.OrderStatusCompleted); err != nil {
		return err
	}

	r.requestRefresh()
	return nil
}

func (r *Reconciler) begin(orderRef string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[orderRef]; busy {
		return false
	}
	r.inflight[orderRef] = struct{}{}
	return true
}

func (r *Reconciler) end(orderRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, orderRef)
}
