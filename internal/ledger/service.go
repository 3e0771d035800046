package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service defines operations that record and read ledger transactions.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerTransaction, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerTransaction, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.LedgerTransaction, error)
}

type service struct {
	repo Repository
}

// RecordEntryInput captures the immutable data a ledger entry requires.
type RecordEntryInput struct {
	OccurredOn  time.Time             `json:"occurred_on"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Type        enums.LedgerEntryType `json:"type"`
	Amount      decimal.Decimal       `json:"amount"`
	OrderID     *uuid.UUID            `json:"order_id"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerTransaction, error) {
	if input.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid ledger entry type %q", input.Type)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}
	occurredOn := input.OccurredOn
	if occurredOn.IsZero() {
		occurredOn = time.Now().UTC()
	}

	entry := &models.LedgerTransaction{
		OccurredOn:  occurredOn,
		Description: input.Description,
		Category:    input.Category,
		Type:        input.Type,
		Amount:      input.Amount,
		OrderID:     input.OrderID,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerTransaction, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}

func (s *service) ListRange(ctx context.Context, from, to time.Time) ([]models.LedgerTransaction, error) {
	return s.repo.ListRange(ctx, from, to)
}
