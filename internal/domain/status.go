package domain

// OrderStatus is the lifecycle state of a placed order.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// legalEdges is the lifecycle graph. The backend enforces the same table
// independently; client and server must agree on it.
var legalEdges = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady},
	OrderStatusReady:     {OrderStatusDelivered},
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether from -> to is a single legal edge.
func CanTransitionTo(from, to OrderStatus) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanReach reports whether to is reachable from from by zero or more
// legal transitions. A status always reaches itself.
func CanReach(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range legalEdges[from] {
		if CanReach(next, to) {
			return true
		}
	}
	return false
}
