package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

var ErrInvalidQuantity = errors.New("quantity must not be negative")

// Observer is called with the cart state after every mutation.
type Observer func(domain.CartSnapshot)

// Store holds the (item, quantity) selections for one session. All
// mutations are synchronous and in-memory; the optional persister is a
// best-effort write-through so a session cart survives a reload.
type Store struct {
	mu        sync.Mutex
	sessionID string
	lines     []domain.CartLine
	observers map[int]Observer
	nextObsID int
	persister Persister
	logger    *slog.Logger
}

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(sessionID string, opts ...Option) *Store {
	s := &Store{
		sessionID: sessionID,
		observers: make(map[int]Observer),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore replaces the in-memory lines with the persisted snapshot for
// this session, if any. A missing snapshot leaves the cart empty.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	snap, err := s.persister.Load(ctx, s.sessionID)
	if errors.Is(err, ErrNoSavedCart) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lines = append([]domain.CartLine(nil), snap.Lines...)
	s.mu.Unlock()

	s.afterMutation()
	return nil
}

// AddOrUpdate sets the quantity for an item, replacing any existing
// quantity. Quantity zero removes the line.
func (s *Store) AddOrUpdate(itemID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.Remove(itemID)
	}

	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].ItemID == itemID {
			s.lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, domain.CartLine{ItemID: itemID, Quantity: quantity})
	}
	s.mu.Unlock()

	s.afterMutation()
	return nil
}

// Remove drops the line for an item. Removing an absent item is a no-op.
func (s *Store) Remove(itemID string) error {
	s.mu.Lock()
	for i, line := range s.lines {
		if line.ItemID == itemID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.afterMutation()
	return nil
}

// Clear empties the cart and deletes any persisted snapshot.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	if s.persister != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.persister.Delete(ctx, s.sessionID); err != nil {
			s.logger.Warn("failed to delete persisted cart", "session_id", s.sessionID, "error", err)
		}
	}

	s.notify()
	return nil
}

// Snapshot returns a copy of the current lines in insertion order.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CartSnapshot{Lines: append([]domain.CartLine(nil), s.lines...)}
}

// Subscribe registers an observer for mutation notifications and
// returns a function that removes it.
func (s *Store) Subscribe(obs Observer) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = obs
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) afterMutation() {
	s.persist()
	s.notify()
}

func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.persister.Save(ctx, s.sessionID, s.Snapshot()); err != nil {
		s.logger.Warn("failed to persist cart", "session_id", s.sessionID, "error", err)
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()

	s.mu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}
