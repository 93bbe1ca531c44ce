package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Kishore-028/KoreConnect/internal/catalog"
	"github.com/Kishore-028/KoreConnect/internal/domain"
)

// Attempt represents one user-initiated checkout. The idempotency key
// is minted when the attempt is created and reused by every Build and
// submission retry within it; a new attempt mints a new key.
type Attempt struct {
	key string
	now func() time.Time
}

func NewAttempt() *Attempt {
	return &Attempt{
		key: uuid.NewString(),
		now: time.Now,
	}
}

func (a *Attempt) IdempotencyKey() string {
	return a.key
}

// Build validates the cart snapshot against the catalog and produces an
// immutable order payload. Unit prices are captured here so later
// catalog changes cannot alter the order. Build never touches the
// network.
func (a *Attempt) Build(snap domain.CartSnapshot, index *catalog.Index) (domain.OrderPayload, error) {
	if snap.IsEmpty() {
		return domain.OrderPayload{}, ErrEmptyCart
	}

	lines := make([]domain.OrderLine, 0, len(snap.Lines))
	subtotal := decimal.Zero
	for _, line := range snap.Lines {
		item, ok := index.Lookup(line.ItemID)
		if !ok || !item.Available {
			return domain.OrderPayload{}, &ItemUnavailableError{ItemID: line.ItemID}
		}

		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		lines = append(lines, domain.OrderLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return domain.OrderPayload{
		Lines:          lines,
		Subtotal:       subtotal,
		SubmittedAt:    a.now().UTC(),
		IdempotencyKey: a.key,
	}, nil
}
