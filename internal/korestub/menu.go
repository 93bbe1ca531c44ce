package korestub

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

func timeNow() time.Time {
	return time.Now().UTC()
}

// DefaultMenu is the fixed menu the stub serves. Deliberately not
// shuffled or randomized so every run and every test sees the same
// listing.
func DefaultMenu() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: "masala-dosa", Name: "Masala Dosa", UnitPrice: decimal.NewFromInt(60), Available: true},
		{ID: "idli-sambar", Name: "Idli Sambar", UnitPrice: decimal.NewFromInt(40), Available: true},
		{ID: "veg-thali", Name: "Veg Thali", UnitPrice: decimal.NewFromInt(120), Available: true},
		{ID: "filter-coffee", Name: "Filter Coffee", UnitPrice: decimal.NewFromInt(25), Available: true},
		{ID: "gobi-manchurian", Name: "Gobi Manchurian", UnitPrice: decimal.NewFromInt(80), Available: false},
	}
}
