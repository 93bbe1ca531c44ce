package admin

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kishore-028/KoreConnect/internal/auth"
	"github.com/Kishore-028/KoreConnect/internal/domain"
	"github.com/Kishore-028/KoreConnect/internal/rest"
)

type mockTransitioner struct {
	m     sync.Mutex
	calls int
	order domain.Order
	err   error
}

func (m *mockTransitioner) UpdateOrderStatus(_ context.Context, orderID string, from, to domain.OrderStatus) (domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Order{}, m.err
	}
	order := m.order
	order.ID = orderID
	order.Status = to
	return order, nil
}

func (m *mockTransitioner) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

var adminCreds = auth.Static{Token: "token", User: auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}}

func TestTransition_LegalEdge(t *testing.T) {
	api := &mockTransitioner{}
	c := NewController(api, adminCreds)

	order, err := c.Transition(context.Background(), "order-1", domain.OrderStatusPlaced, domain.OrderStatusConfirmed)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, 1, api.callCount())
}

func TestTransition_IllegalEdgeFailsLocally(t *testing.T) {
	api := &mockTransitioner{}
	c := NewController(api, adminCreds)

	// Skipping CONFIRMED and PREPARING is not a legal edge.
	_, err := c.Transition(context.Background(), "order-1", domain.OrderStatusPlaced, domain.OrderStatusReady)

	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, domain.OrderStatusPlaced, illegal.From)
	assert.Equal(t, domain.OrderStatusReady, illegal.To)
	assert.Equal(t, 0, api.callCount(), "illegal edges must not reach the backend")
}

func TestTransition_AllIllegalEdgesRejected(t *testing.T) {
	api := &mockTransitioner{}
	c := NewController(api, adminCreds)

	illegalEdges := [][2]domain.OrderStatus{
		{domain.OrderStatusPlaced, domain.OrderStatusPreparing},
		{domain.OrderStatusPreparing, domain.OrderStatusCancelled},
		{domain.OrderStatusReady, domain.OrderStatusCancelled},
		{domain.OrderStatusDelivered, domain.OrderStatusReady},
		{domain.OrderStatusCancelled, domain.OrderStatusConfirmed},
		{domain.OrderStatusConfirmed, domain.OrderStatusPlaced},
	}
	for _, edge := range illegalEdges {
		_, err := c.Transition(context.Background(), "order-1", edge[0], edge[1])
		var illegal *IllegalTransitionError
		assert.ErrorAs(t, err, &illegal, "%s -> %s", edge[0], edge[1])
	}
	assert.Equal(t, 0, api.callCount())
}

func TestTransition_ConflictRequiresRefetch(t *testing.T) {
	api := &mockTransitioner{
		err: &rest.APIError{Status: http.StatusConflict, Code: "stale_status", Message: "order is PREPARING, not CONFIRMED"},
	}
	c := NewController(api, adminCreds)

	_, err := c.Transition(context.Background(), "order-1", domain.OrderStatusConfirmed, domain.OrderStatusPreparing)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, api.callCount())
}

func TestTransition_OtherBackendErrorsPassThrough(t *testing.T) {
	api := &mockTransitioner{
		err: &rest.APIError{Status: http.StatusNotFound, Code: "order_not_found"},
	}
	c := NewController(api, adminCreds)

	_, err := c.Transition(context.Background(), "order-1", domain.OrderStatusPlaced, domain.OrderStatusConfirmed)

	var apiErr *rest.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
