package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emekaobi/freshbasket-backend/pkg/enums"
)

// LedgerTransaction mirrors fulfilled revenue (and admin adjustments) into
// the accounting view. Rows are append-only from the webhook pipeline.
type LedgerTransaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OccurredOn  time.Time             `gorm:"column:occurred_on;type:date;not null"`
	Description string                `gorm:"column:description;type:text;not null"`
	Category    string                `gorm:"column:category;type:text;not null"`
	Type        enums.LedgerEntryType `gorm:"column:type;type:ledger_entry_type;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	OrderID     *uuid.UUID            `gorm:"column:order_id;type:uuid;index"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
