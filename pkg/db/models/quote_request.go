package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emekaobi/freshbasket-backend/pkg/enums"
)

// QuoteRequest is a custom-order request. Items (with admin-assigned unit
// costs) are stored as a JSON document; only the status machine is relational.
type QuoteRequest struct {
	ID           string            `gorm:"column:id;type:text;primaryKey"`
	UserID       string            `gorm:"column:user_id;type:text;not null;index"`
	Status       enums.QuoteStatus `gorm:"column:status;type:quote_status;not null;default:'pending_review'"`
	Items        json.RawMessage   `gorm:"column:items;type:jsonb;not null"`
	ShippingCost decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
