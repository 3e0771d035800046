package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart, keyed by user, product and variant.
type CartItem struct {
	UserID      string          `gorm:"column:user_id;type:text;primaryKey"`
	ProductID   string          `gorm:"column:product_id;type:text;primaryKey"`
	VariantName string          `gorm:"column:variant_name;type:text;primaryKey"`
	Name        string          `gorm:"column:name;type:text;not null"`
	Qty         int             `gorm:"column:qty;not null;check:qty >= 1"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ImageID     *string         `gorm:"column:image_id;type:text"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
