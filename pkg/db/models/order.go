package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emekaobi/freshbasket-backend/pkg/enums"
)

// Order is the purchase aggregate created exactly once per successful,
// previously-unseen gateway charge. PaymentReference doubles as the
// idempotency key and is enforced unique at the database level.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           string            `gorm:"column:user_id;type:text;not null;index"`
	Status           enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'awaiting_confirmation'"`
	ItemCount        int               `gorm:"column:item_count;not null"`
	Total            decimal.Decimal   `gorm:"column:total;type:numeric(14,2);not null"`
	PaymentReference string            `gorm:"column:payment_reference;type:text;not null;uniqueIndex:uq_orders_payment_reference"`
	Source           enums.OrderSource `gorm:"column:source;type:order_source;not null"`
	SourceID         *string           `gorm:"column:source_id;type:text"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// UniqueConstraintPaymentReference names the index backing webhook
// idempotency so conflict handling can target it precisely.
const UniqueConstraintPaymentReference = "uq_orders_payment_reference"
