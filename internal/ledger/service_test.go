package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepository struct {
	created       []*models.LedgerTransaction
	createErr     error
	listByOrderFn func(ctx context.Context, orderID uuid.UUID) ([]models.LedgerTransaction, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.LedgerTransaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, entry)
	return nil
}

func (f *fakeRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerTransaction, error) {
	if f.listByOrderFn != nil {
		return f.listByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeRepository) ListRange(ctx context.Context, from, to time.Time) ([]models.LedgerTransaction, error) {
	return nil, nil
}

func TestService_RecordEntry(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	orderID := uuid.New()
	entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{
		Description: "Order fb-1755",
		Category:    "Online Store",
		Type:        enums.LedgerEntryTypeSale,
		Amount:      decimal.RequireFromString("26000.00"),
		OrderID:     &orderID,
	})
	if err != nil {
		t.Fatalf("unexpected record error: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created entry, got %d", len(repo.created))
	}
	if !entry.Amount.Equal(decimal.RequireFromString("26000.00")) {
		t.Fatalf("unexpected amount %s", entry.Amount)
	}
	if entry.OccurredOn.IsZero() {
		t.Fatal("expected occurred_on to default to today")
	}
}

func TestService_RecordEntryValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})

	cases := []struct {
		name  string
		input RecordEntryInput
	}{
		{
			name:  "missing description",
			input: RecordEntryInput{Type: enums.LedgerEntryTypeSale, Amount: decimal.NewFromInt(10)},
		},
		{
			name:  "invalid type",
			input: RecordEntryInput{Description: "x", Type: "bogus", Amount: decimal.NewFromInt(10)},
		},
		{
			name:  "negative amount",
			input: RecordEntryInput{Description: "x", Type: enums.LedgerEntryTypeSale, Amount: decimal.NewFromInt(-5)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordEntry(context.Background(), tc.input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestService_RecordEntryCreateError(t *testing.T) {
	repo := &fakeRepository{createErr: errors.New("boom")}
	svc, _ := NewService(repo)

	_, err := svc.RecordEntry(context.Background(), RecordEntryInput{
		Description: "Order fb-1",
		Type:        enums.LedgerEntryTypeSale,
		Amount:      decimal.NewFromInt(100),
	})
	if err == nil {
		t.Fatal("expected error from repository")
	}
}

func TestService_ListByOrderID(t *testing.T) {
	orderID := uuid.New()
	repo := &fakeRepository{
		listByOrderFn: func(ctx context.Context, id uuid.UUID) ([]models.LedgerTransaction, error) {
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			return []models.LedgerTransaction{{ID: uuid.New(), OrderID: &id}}, nil
		},
	}
	svc, _ := NewService(repo)

	entries, err := svc.ListByOrderID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if _, err := svc.ListByOrderID(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil order id")
	}
}
