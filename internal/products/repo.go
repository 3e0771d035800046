package products

import (
	"context"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for the catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, params listProductsParams) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindVariant(ctx context.Context, productID, variantName string) (*models.ProductVariant, error)
	Save(ctx context.Context, product *models.Product) error
	SaveVariant(ctx context.Context, variant *models.ProductVariant) error
	AdjustStock(ctx context.Context, productID, variantName string, delta int) (int64, error)
	SetActive(ctx context.Context, id string, active bool) (int64, error)
}

type listProductsParams struct {
	IncludeInactive bool
	Search          string
	Limit           int
	Offset          int
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, params listProductsParams) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Variants")
	if !params.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if params.Search != "" {
		query = query.Where("name LIKE ?", "%"+params.Search+"%")
	}
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	var products []models.Product
	if err := query.Order("name ASC, id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindVariant(ctx context.Context, productID, variantName string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		First(&variant, "product_id = ? AND name = ?", productID, variantName).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// Save upserts the product row and its variants.
func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "image_id", "is_active", "updated_at"}),
		}).
		Create(product).Error
}

func (r *repository) SaveVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "stock", "updated_at"}),
		}).
		Create(variant).Error
}

// AdjustStock applies a relative stock delta. Negative deltas are refused at
// the database layer when they would take stock below zero.
func (r *repository) AdjustStock(ctx context.Context, productID, variantName string, delta int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ? AND name = ? AND stock + ? >= 0", productID, variantName, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	return result.RowsAffected, result.Error
}

func (r *repository) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", active)
	return result.RowsAffected, result.Error
}
