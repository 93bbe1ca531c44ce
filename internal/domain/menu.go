package domain

import "github.com/shopspring/decimal"

// MenuItem is an immutable snapshot of a catalog entry. The catalog
// service owns it; the cart only references it by id.
type MenuItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Available bool            `json:"available"`
}
