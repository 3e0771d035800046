package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/emekaobi/freshbasket-backend/pkg/enums"
)

// Notification stores in-app notification payloads for users and the admin
// feed. RecipientID is empty for admin-wide notifications.
type Notification struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Recipient   enums.NotificationRecipient `gorm:"type:notification_recipient;not null"`
	RecipientID string                      `gorm:"type:text;not null;default:'';index"`
	Title       string                      `gorm:"type:text;not null"`
	Description string                      `gorm:"type:text;not null"`
	Href        *string                     `gorm:"type:text"`
	Icon        *string                     `gorm:"type:text"`
	ReadAt      *time.Time                  `gorm:"type:timestamptz"`
	CreatedAt   time.Time                   `gorm:"type:timestamptz;default:now()"`
}
