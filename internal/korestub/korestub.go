// Package korestub is an in-process stand-in for the KoreConnect
// backend. It implements the REST contract the client depends on:
// order creation deduped by idempotency key, optimistic concurrency on
// status updates, and a read-only menu. It backs the package tests and
// the local korestub binary; it shares the domain edge table with the
// client so both sides validate the same graph.
package korestub

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

type Server struct {
	mu     sync.Mutex
	menu   []domain.MenuItem
	orders map[string]*domain.Order
	byKey  map[string]string // idempotency key -> order id

	failCreates     int // remaining POST /orders calls to fail
	failCreatesWith int // status code for injected failures
}

func NewServer(menu []domain.MenuItem) *Server {
	return &Server{
		menu:   menu,
		orders: make(map[string]*domain.Order),
		byKey:  make(map[string]string),
	}
}

// InjectCreateFailures makes the next n POST /orders calls fail with
// the given status before the handler runs.
func (s *Server) InjectCreateFailures(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreates = n
	s.failCreatesWith = status
}

// Order returns a copy of a stored order.
func (s *Server) Order(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return *order, true
}

// SetStatus overwrites an order's status directly, bypassing the edge
// table. Used to simulate backend-side progression (or misbehavior) in
// tests.
func (s *Server) SetStatus(id string, status domain.OrderStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return false
	}
	order.Status = status
	order.StatusHistory = append(order.StatusHistory, domain.StatusChange{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Actor:     "backend",
	})
	return true
}

// OrderCount reports how many distinct orders have been created.
func (s *Server) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Server) createOrder(payload domain.OrderPayload, actor string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Dedupe by idempotency key: replay the original order.
	if id, ok := s.byKey[payload.IdempotencyKey]; ok {
		return *s.orders[id], false
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:      uuid.NewString(),
		Payload: payload,
		Status:  domain.OrderStatusPlaced,
		StatusHistory: []domain.StatusChange{
			{Status: domain.OrderStatusPlaced, Timestamp: now, Actor: actor},
		},
	}
	s.orders[order.ID] = order
	s.byKey[payload.IdempotencyKey] = order.ID
	return *order, true
}

func (s *Server) itemUnavailable(payload domain.OrderPayload) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range payload.Lines {
		found := false
		for _, item := range s.menu {
			if item.ID == line.ItemID {
				found = item.Available
				break
			}
		}
		if !found {
			return line.ItemID, true
		}
	}
	return "", false
}

func (s *Server) takeInjectedFailure() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreates == 0 {
		return 0, false
	}
	s.failCreates--
	return s.failCreatesWith, true
}

// actorFromToken extracts the caller identity from the bearer token
// claims. The stub trusts the token without verifying its signature.
func actorFromToken(token string) string {
	var claims struct {
		jwt.RegisteredClaims
		UserID string `json:"user_id"`
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "unknown"
	}
	if claims.UserID != "" {
		return claims.UserID
	}
	if claims.Subject != "" {
		return claims.Subject
	}
	return "unknown"
}
