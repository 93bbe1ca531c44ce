package cart

import (
	"context"
	"errors"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

// Persister stores a session's cart snapshot between visits.
type Persister interface {
	Save(ctx context.Context, sessionID string, snap domain.CartSnapshot) error
	Load(ctx context.Context, sessionID string) (domain.CartSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

var ErrNoSavedCart = errors.New("no saved cart for session")
