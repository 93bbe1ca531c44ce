package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is a cart line with the unit price captured at build time,
// so later catalog price changes cannot alter a placed order.
type OrderLine struct {
	ItemID    string          `json:"item_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderPayload is the full order submission. Immutable once built; the
// idempotency key is stable across retries of the same checkout attempt.
type OrderPayload struct {
	Lines          []OrderLine     `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// StatusChange is one entry in an order's status history.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     string      `json:"actor"`
}

// Order is the server-persisted record created from a submitted payload.
// The backend owns it; the client mirrors it read-only.
type Order struct {
	ID            string         `json:"id"`
	Payload       OrderPayload   `json:"payload"`
	Status        OrderStatus    `json:"status"`
	StatusHistory []StatusChange `json:"status_history"`
}
