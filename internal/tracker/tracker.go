// Package tracker polls a submitted order and exposes its lifecycle as
// a stream of order snapshots.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

// OrderFetcher is the backend surface the tracker needs.
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// InconsistentStateError means the backend reported a status the
// lifecycle graph cannot reach from the last observed one. The stream
// terminates; the caller should refetch and re-track.
type InconsistentStateError struct {
	OrderID  string
	Last     domain.OrderStatus
	Observed domain.OrderStatus
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("order %s moved backward from %s to %s", e.OrderID, e.Last, e.Observed)
}

const defaultInterval = 2 * time.Second

type Tracker struct {
	api      OrderFetcher
	interval time.Duration
	logger   *slog.Logger
}

type Option func(*Tracker)

func WithInterval(d time.Duration) Option {
	return func(t *Tracker) { t.interval = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func New(api OrderFetcher, opts ...Option) *Tracker {
	t := &Tracker{
		api:      api,
		interval: defaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track polls the order until it reaches a terminal status, the stream
// becomes inconsistent, or ctx is cancelled. An order snapshot is sent
// whenever the observed status changes; statuses never move backward
// within one stream. Both channels are closed when tracking stops, so a
// poll is never left dangling after cancellation.
func (t *Tracker) Track(ctx context.Context, orderID string) (<-chan domain.Order, <-chan error) {
	orders := make(chan domain.Order)
	errs := make(chan error, 1)
	go t.run(ctx, orderID, orders, errs)
	return orders, errs
}

func (t *Tracker) run(ctx context.Context, orderID string, orders chan<- domain.Order, errs chan<- error) {
	defer close(orders)
	defer close(errs)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var last domain.OrderStatus
	seen := false
	for {
		order, err := t.api.GetOrder(ctx, orderID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			// Transient; the next tick retries.
			t.logger.Warn("order poll failed", "order_id", orderID, "error", err)

		case seen && order.Status == last:
			// No change since the last poll.

		case seen && !domain.CanReach(last, order.Status):
			errs <- &InconsistentStateError{OrderID: orderID, Last: last, Observed: order.Status}
			return

		default:
			last = order.Status
			seen = true
			select {
			case orders <- order:
			case <-ctx.Done():
				return
			}
			if order.Status.IsTerminal() {
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
