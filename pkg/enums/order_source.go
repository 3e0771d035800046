package enums

import "fmt"

// OrderSource records which purchase flow produced an order.
type OrderSource string

const (
	OrderSourceCart  OrderSource = "cart"
	OrderSourceQuote OrderSource = "quote"
)

var validOrderSources = []OrderSource{
	OrderSourceCart,
	OrderSourceQuote,
}

// String implements fmt.Stringer.
func (s OrderSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderSource.
func (s OrderSource) IsValid() bool {
	for _, candidate := range validOrderSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderSource converts raw input into an OrderSource.
func ParseOrderSource(value string) (OrderSource, error) {
	for _, candidate := range validOrderSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order source %q", value)
}
