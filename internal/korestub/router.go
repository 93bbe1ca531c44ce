package korestub

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Router builds the HTTP surface matching the backend REST contract.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(bearerAuth)

	r.Get("/menu", s.handleListMenu)
	r.Post("/orders", s.handleCreateOrder)
	r.Get("/orders/{order_id}", s.handleGetOrder)
	r.Patch("/orders/{order_id}/status", s.handleUpdateStatus)

	return r
}

// bearerAuth rejects requests without a bearer credential and stashes
// the raw token for actor stamping.
func bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || header == "Bearer " {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	menu := append([]domain.MenuItem(nil), s.menu...)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, menu)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if status, ok := s.takeInjectedFailure(); ok {
		respondError(w, status, "unavailable", "injected failure")
		return
	}

	var payload domain.OrderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if payload.IdempotencyKey == "" {
		respondError(w, http.StatusBadRequest, "missing_idempotency_key", "idempotency_key is required")
		return
	}
	if len(payload.Lines) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "empty_order", "order has no lines")
		return
	}
	if itemID, bad := s.itemUnavailable(payload); bad {
		respondError(w, http.StatusUnprocessableEntity, "item_unavailable", "item "+itemID+" is not available")
		return
	}

	actor := actorFromToken(bearerToken(r))
	order, created := s.createOrder(payload, actor)
	status := http.StatusCreated
	if !created {
		status = http.StatusOK // idempotent replay
	}
	respondJSON(w, status, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	order, ok := s.Order(orderID)
	if !ok {
		respondError(w, http.StatusNotFound, "order_not_found", "no order with id "+orderID)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type statusPatchDTO struct {
	FromStatus domain.OrderStatus `json:"from_status"`
	ToStatus   domain.OrderStatus `json:"to_status"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	var req statusPatchDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !req.FromStatus.IsValid() || !req.ToStatus.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown status value")
		return
	}

	actor := actorFromToken(bearerToken(r))

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		respondError(w, http.StatusNotFound, "order_not_found", "no order with id "+orderID)
		return
	}
	if order.Status != req.FromStatus {
		respondError(w, http.StatusConflict, "stale_status",
			"order is "+order.Status.String()+", not "+req.FromStatus.String())
		return
	}
	if !domain.CanTransitionTo(req.FromStatus, req.ToStatus) {
		respondError(w, http.StatusUnprocessableEntity, "illegal_transition",
			"cannot move from "+req.FromStatus.String()+" to "+req.ToStatus.String())
		return
	}

	order.Status = req.ToStatus
	order.StatusHistory = append(order.StatusHistory, domain.StatusChange{
		Status:    req.ToStatus,
		Timestamp: timeNow(),
		Actor:     actor,
	})
	respondJSON(w, http.StatusOK, *order)
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}
