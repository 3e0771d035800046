package enums

import "fmt"

// OrderStatus maps to the order_status enum in Postgres.
type OrderStatus string

const (
	OrderStatusAwaitingConfirmation OrderStatus = "awaiting_confirmation"
	OrderStatusShipped              OrderStatus = "shipped"
	OrderStatusDelivered            OrderStatus = "delivered"
	OrderStatusCancelled            OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusAwaitingConfirmation,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Orders only ever move forward: awaiting -> shipped -> delivered, with
// cancellation allowed until the order ships.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusAwaitingConfirmation: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:              {OrderStatusDelivered},
	OrderStatusDelivered:            {},
	OrderStatusCancelled:            {},
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// Display returns the customer-facing label for the status.
func (s OrderStatus) Display() string {
	switch s {
	case OrderStatusAwaitingConfirmation:
		return "Awaiting Confirmation"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderStatusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
