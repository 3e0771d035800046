package models

import (
	"time"
)

// Product is a catalog listing. IDs are externally assigned strings carried
// over from the storefront's document-store heritage.
type Product struct {
	ID          string           `gorm:"column:id;type:text;primaryKey"`
	Name        string           `gorm:"column:name;type:text;not null"`
	Description *string          `gorm:"column:description;type:text"`
	ImageID     *string          `gorm:"column:image_id;type:text"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
