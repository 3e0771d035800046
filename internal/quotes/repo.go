package quotes

import (
	"context"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for quote requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.QuoteRequest) error
	FindByID(ctx context.Context, id string) (*models.QuoteRequest, error)
	ListByUser(ctx context.Context, userID string) ([]models.QuoteRequest, error)
	ListByStatus(ctx context.Context, status enums.QuoteStatus) ([]models.QuoteRequest, error)
	Update(ctx context.Context, quote *models.QuoteRequest) error
	UpdateStatus(ctx context.Context, id string, from, to enums.QuoteStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quotes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.QuoteRequest) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.QuoteRequest, error) {
	var quote models.QuoteRequest
	if err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.QuoteRequest, error) {
	var quotes []models.QuoteRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.QuoteStatus) ([]models.QuoteRequest, error) {
	var quotes []models.QuoteRequest
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repository) Update(ctx context.Context, quote *models.QuoteRequest) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// UpdateStatus applies the transition only when the row is still in the
// expected source state, making concurrent transitions race-safe.
func (r *repository) UpdateStatus(ctx context.Context, id string, from, to enums.QuoteStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
