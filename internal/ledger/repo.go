package ledger

import (
	"context"
	"time"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for ledger transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerTransaction) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerTransaction, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.LedgerTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerTransaction, error) {
	var entries []models.LedgerTransaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListRange(ctx context.Context, from, to time.Time) ([]models.LedgerTransaction, error) {
	var entries []models.LedgerTransaction
	query := r.db.WithContext(ctx)
	if !from.IsZero() {
		query = query.Where("occurred_on >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("occurred_on <= ?", to)
	}
	if err := query.Order("occurred_on DESC, created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
