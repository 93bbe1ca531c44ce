package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/Kishore-028/KoreConnect/internal/domain"
	"github.com/Kishore-028/KoreConnect/internal/rest"
)

// OrderCreator is the backend surface the submitter needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, payload domain.OrderPayload) (domain.Order, error)
}

// CartClearer is the piece of the cart the submitter resets after a
// confirmed submission.
type CartClearer interface {
	Clear() error
}

const (
	defaultMaxRetries  = 4
	defaultBaseBackoff = 200 * time.Millisecond
)

// Submitter sends an order payload to the backend at most once per
// checkout attempt. Transient failures are retried with exponential
// backoff under the same idempotency key; concurrent duplicates for the
// same key share a single in-flight request.
type Submitter struct {
	api         OrderCreator
	cart        CartClearer
	maxRetries  uint64
	baseBackoff time.Duration
	sfg         singleflight.Group // one in-flight submission per idempotency key
	logger      *slog.Logger
}

type SubmitterOption func(*Submitter)

func WithMaxRetries(n uint64) SubmitterOption {
	return func(s *Submitter) { s.maxRetries = n }
}

func WithBaseBackoff(d time.Duration) SubmitterOption {
	return func(s *Submitter) { s.baseBackoff = d }
}

func WithSubmitLogger(l *slog.Logger) SubmitterOption {
	return func(s *Submitter) { s.logger = l }
}

func NewSubmitter(api OrderCreator, cart CartClearer, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		api:         api,
		cart:        cart,
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Submitter) Submit(ctx context.Context, payload domain.OrderPayload) (domain.Order, error) {
	v, err, shared := s.sfg.Do(payload.IdempotencyKey, func() (any, error) {
		return s.submit(ctx, payload)
	})
	if shared {
		s.logger.Info("duplicate submission suppressed", "idempotency_key", payload.IdempotencyKey)
	}
	if err != nil {
		return domain.Order{}, err
	}
	return v.(domain.Order), nil
}

func (s *Submitter) submit(ctx context.Context, payload domain.OrderPayload) (domain.Order, error) {
	var order domain.Order

	operation := func() error {
		o, err := s.api.CreateOrder(ctx, payload)
		if err == nil {
			order = o
			return nil
		}

		var apiErr *rest.APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return backoff.Permanent(&RejectedError{Code: apiErr.Code, Reason: apiErr.Message})
		}

		s.logger.Warn("order submission failed, will retry",
			"idempotency_key", payload.IdempotencyKey, "error", err)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.baseBackoff
	policy.MaxElapsedTime = 0 // bounded by retry count, not wall clock

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, s.maxRetries), ctx))
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			return domain.Order{}, rejected
		}
		if ctx.Err() != nil {
			return domain.Order{}, fmt.Errorf("submission cancelled: %w", err)
		}
		return domain.Order{}, fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}

	// Clear only after the backend confirmed the order; a retried
	// request that succeeded server-side lands here too, via the
	// idempotency-key dedupe.
	if s.cart != nil {
		if clearErr := s.cart.Clear(); clearErr != nil {
			s.logger.Warn("failed to clear cart after submission",
				"order_id", order.ID, "error", clearErr)
		}
	}

	s.logger.Info("order submitted", "order_id", order.ID, "idempotency_key", payload.IdempotencyKey)
	return order, nil
}
