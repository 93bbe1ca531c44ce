// Package admin applies operator-initiated order status transitions.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Kishore-028/KoreConnect/internal/auth"
	"github.com/Kishore-028/KoreConnect/internal/domain"
	"github.com/Kishore-028/KoreConnect/internal/rest"
)

// OrderTransitioner is the backend surface the controller needs.
type OrderTransitioner interface {
	UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (domain.Order, error)
}

// IllegalTransitionError means the requested edge is not in the
// lifecycle graph. Raised locally, before any network call; the backend
// re-validates the same table independently.
type IllegalTransitionError struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// ErrConflict means another operator already transitioned the order.
// The caller must refetch the current state before retrying.
var ErrConflict = errors.New("order status changed concurrently")

type Controller struct {
	api    OrderTransitioner
	creds  auth.CredentialProvider
	logger *slog.Logger
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func NewController(api OrderTransitioner, creds auth.CredentialProvider, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		creds:  creds,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transition moves an order from one status to another. The edge is
// checked locally first; the backend stamps the actor from the bearer
// credential and rejects stale fromStatus values with a conflict.
func (c *Controller) Transition(ctx context.Context, orderID string, from, to domain.OrderStatus) (domain.Order, error) {
	if !domain.CanTransitionTo(from, to) {
		return domain.Order{}, &IllegalTransitionError{From: from, To: to}
	}

	order, err := c.api.UpdateOrderStatus(ctx, orderID, from, to)
	if err != nil {
		var apiErr *rest.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return domain.Order{}, fmt.Errorf("%w: %s", ErrConflict, apiErr.Message)
		}
		return domain.Order{}, err
	}

	if ident, identErr := c.creds.Identity(); identErr == nil {
		c.logger.Info("order status transitioned",
			"order_id", orderID, "from", from, "to", to, "actor", ident.UserID)
	}
	return order, nil
}
