// Package checkout holds pure validation helpers run before a payment is
// initialized. They are advisory: the webhook pipeline re-checks stock
// atomically when the charge lands.
package checkout

import (
	"fmt"

	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
)

// AvailabilityInput describes the data required to precheck one line.
type AvailabilityInput struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

// AvailabilityViolationDetail exposes the data returned to callers when a
// precheck fails.
type AvailabilityViolationDetail struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	AvailableQty int    `json:"available_qty"`
	RequestedQty int    `json:"requested_qty"`
}

// ValidateAvailability ensures every provided line can currently be covered
// from stock.
func ValidateAvailability(items []AvailabilityInput) error {
	var violations []AvailabilityViolationDetail
	for _, item := range items {
		if item.Requested <= item.Available {
			continue
		}
		violations = append(violations, AvailabilityViolationDetail{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			AvailableQty: item.Available,
			RequestedQty: item.Requested,
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
