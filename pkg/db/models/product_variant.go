package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVariantName is the canonical variant used when a product has no
// named variations.
const DefaultVariantName = "Standard"

// ProductVariant carries the priced, stocked unit of sale. Stock is only
// mutated by the reservation engine and by admin restock.
type ProductVariant struct {
	ProductID string          `gorm:"column:product_id;type:text;primaryKey"`
	Name      string          `gorm:"column:name;type:text;primaryKey"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int             `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
