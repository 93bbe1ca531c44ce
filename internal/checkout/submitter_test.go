package checkout

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kishore-028/KoreConnect/internal/domain"
	"github.com/Kishore-028/KoreConnect/internal/rest"
)

type mockCreator struct {
	m        sync.Mutex
	calls    int
	failWith []error // consumed one per call; nil entry means success
	order    domain.Order
	gate     chan struct{} // if set, CreateOrder blocks until closed
}

func (m *mockCreator) CreateOrder(_ context.Context, payload domain.OrderPayload) (domain.Order, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if len(m.failWith) > 0 {
		err := m.failWith[0]
		m.failWith = m.failWith[1:]
		if err != nil {
			return domain.Order{}, err
		}
	}
	order := m.order
	order.Payload = payload
	return order, nil
}

func (m *mockCreator) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

type mockCart struct {
	m       sync.Mutex
	cleared int
}

func (m *mockCart) Clear() error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cleared++
	return nil
}

func (m *mockCart) clearCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.cleared
}

func testPayload(key string) domain.OrderPayload {
	return domain.OrderPayload{
		Lines:          []domain.OrderLine{{ItemID: "A", Quantity: 2, UnitPrice: decimal.NewFromInt(50)}},
		Subtotal:       decimal.NewFromInt(100),
		SubmittedAt:    time.Now().UTC(),
		IdempotencyKey: key,
	}
}

func TestSubmit_SuccessClearsCart(t *testing.T) {
	creator := &mockCreator{order: domain.Order{ID: "order-1", Status: domain.OrderStatusPlaced}}
	cart := &mockCart{}
	s := NewSubmitter(creator, cart, WithBaseBackoff(time.Millisecond))

	order, err := s.Submit(context.Background(), testPayload("key-1"))
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Equal(t, 1, creator.callCount())
	assert.Equal(t, 1, cart.clearCount())
}

func TestSubmit_RetriesTransientFailures(t *testing.T) {
	creator := &mockCreator{
		order: domain.Order{ID: "order-1", Status: domain.OrderStatusPlaced},
		failWith: []error{
			&rest.APIError{Status: http.StatusBadGateway, Code: "unavailable"},
			&rest.APIError{Status: http.StatusServiceUnavailable, Code: "unavailable"},
			nil,
		},
	}
	cart := &mockCart{}
	s := NewSubmitter(creator, cart, WithBaseBackoff(time.Millisecond), WithMaxRetries(4))

	order, err := s.Submit(context.Background(), testPayload("key-1"))
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, 3, creator.callCount())
	// Every retry reuses the payload, and so the idempotency key.
	assert.Equal(t, "key-1", order.Payload.IdempotencyKey)
	assert.Equal(t, 1, cart.clearCount())
}

func TestSubmit_RejectionIsNotRetried(t *testing.T) {
	creator := &mockCreator{
		failWith: []error{&rest.APIError{Status: http.StatusUnprocessableEntity, Code: "item_unavailable", Message: "item B is not available"}},
	}
	cart := &mockCart{}
	s := NewSubmitter(creator, cart, WithBaseBackoff(time.Millisecond))

	_, err := s.Submit(context.Background(), testPayload("key-1"))

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "item_unavailable", rejected.Code)
	assert.Equal(t, 1, creator.callCount(), "4xx must fail immediately")
	assert.Equal(t, 0, cart.clearCount(), "cart must survive a rejected submission")
}

func TestSubmit_ExhaustsRetries(t *testing.T) {
	creator := &mockCreator{
		failWith: []error{
			&rest.APIError{Status: http.StatusInternalServerError},
			&rest.APIError{Status: http.StatusInternalServerError},
			&rest.APIError{Status: http.StatusInternalServerError},
		},
	}
	cart := &mockCart{}
	s := NewSubmitter(creator, cart, WithBaseBackoff(time.Millisecond), WithMaxRetries(2))

	_, err := s.Submit(context.Background(), testPayload("key-1"))

	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 3, creator.callCount()) // initial try + 2 retries
	assert.Equal(t, 0, cart.clearCount())
}

func TestSubmit_ConcurrentDuplicatesShareOneFlight(t *testing.T) {
	gate := make(chan struct{})
	creator := &mockCreator{
		order: domain.Order{ID: "order-1", Status: domain.OrderStatusPlaced},
		gate:  gate,
	}
	cart := &mockCart{}
	s := NewSubmitter(creator, cart, WithBaseBackoff(time.Millisecond))

	type result struct {
		id  string
		err error
	}

	payload := testPayload("key-1")
	results := make(chan result, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := s.Submit(context.Background(), payload)
			results <- result{id: order.ID, err: err}
		}()
	}

	// Let both goroutines reach the submitter before releasing the
	// backend call.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(results)

	assert.Equal(t, 1, creator.callCount(), "double-click must not create a second request")
	for r := range results {
		require.NoError(t, r.err)
		assert.Equal(t, "order-1", r.id)
	}
}

func TestSubmit_CancelledContext(t *testing.T) {
	creator := &mockCreator{
		failWith: []error{&rest.APIError{Status: http.StatusInternalServerError}},
	}
	s := NewSubmitter(creator, nil, WithBaseBackoff(time.Hour)) // backoff long enough to outlive the ctx

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Submit(ctx, testPayload("key-1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
}
