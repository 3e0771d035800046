package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots one purchased line. Price is the unit price at the
// moment of purchase and never changes when the catalog does.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   string          `gorm:"column:product_id;type:text;not null"`
	Name        string          `gorm:"column:name;type:text;not null"`
	VariantName string          `gorm:"column:variant_name;type:text;not null"`
	Qty         int             `gorm:"column:qty;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ImageID     *string         `gorm:"column:image_id;type:text"`
}
