package paystackwebhook

import (
	"encoding/json"
	"strings"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// EventChargeSuccess is the only gateway event this pipeline materializes
// orders from.
const EventChargeSuccess = "charge.success"

// Event is the gateway's webhook envelope.
type Event struct {
	Event string     `json:"event"`
	Data  ChargeData `json:"data"`
}

// ChargeData carries the charge fields the pipeline reads. Amount is in
// minor currency units (kobo).
type ChargeData struct {
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency"`
	Customer  Customer `json:"customer"`
	Metadata  Metadata `json:"metadata"`
}

// Customer identifies the paying customer as known to the gateway.
type Customer struct {
	Email string `json:"email"`
}

// Metadata is the bag attached at payment initialization. The gateway
// occasionally delivers it as a JSON-encoded string rather than an object,
// so decoding tolerates both shapes.
type Metadata struct {
	UserID     string `json:"user_id"`
	OrderType  string `json:"order_type"`
	OrderRef   string `json:"order_ref"`
	OrderItems string `json:"order_items"`
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var wrapped string
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if strings.TrimSpace(wrapped) == "" {
			return nil
		}
		data = []byte(wrapped)
	}

	type alias Metadata
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = Metadata(decoded)
	return nil
}

// OrderLine is one purchased line as serialized into the order_items
// metadata string at initialization. Name is the display name and may carry
// a parenthesized variant suffix.
type OrderLine struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Price   decimal.Decimal `json:"price"`
	ImageID *string         `json:"image_id,omitempty"`
}

// ParseDisplayName splits "Egusi Soup (Family Size)" into the base product
// name and the variant. Names without a suffix map to the default variant.
func ParseDisplayName(display string) (name, variant string) {
	display = strings.TrimSpace(display)
	if strings.HasSuffix(display, ")") {
		if open := strings.LastIndex(display, "("); open > 0 {
			inner := strings.TrimSpace(display[open+1 : len(display)-1])
			base := strings.TrimSpace(display[:open])
			if inner != "" && base != "" {
				return base, inner
			}
		}
	}
	return display, models.DefaultVariantName
}

// DecodeOrderLines parses and validates the order_items metadata string.
func DecodeOrderLines(orderItems string) ([]OrderLine, error) {
	if strings.TrimSpace(orderItems) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metadata order_items is empty")
	}
	var lines []OrderLine
	if err := json.Unmarshal([]byte(orderItems), &lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode order_items")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_items has no lines")
	}
	for _, line := range lines {
		if strings.TrimSpace(line.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line name required")
		}
		if line.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line qty must be at least 1")
		}
		if line.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line price must not be negative")
		}
	}
	return lines, nil
}
