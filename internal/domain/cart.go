package domain

// CartLine is one (item, quantity) selection. Quantity is always >= 1;
// a quantity of zero removes the line from the cart.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CartSnapshot is the ordered cart state at a point in time. It is only
// valid while every referenced item still resolves to an available
// menu item; the order builder re-checks that at build time.
type CartSnapshot struct {
	Lines []CartLine `json:"lines"`
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
