package cart

import (
	"context"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	Upsert(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, userID, productID, variantName string) (int64, error)
	ClearForUser(ctx context.Context, userID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert writes the line as the new absolute state, replacing any quantity
// already stored for the same user/product/variant key.
func (r *repository) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "product_id"}, {Name: "variant_name"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"qty", "unit_price", "name", "image_id", "updated_at"}),
		}).
		Create(item).Error
}

func (r *repository) Delete(ctx context.Context, userID, productID, variantName string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND variant_name = ?", userID, productID, variantName).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

func (r *repository) ClearForUser(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}
