package reservation

import (
	"context"
	"testing"

	"github.com/emekaobi/freshbasket-backend/pkg/db/dbtest"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestReserveStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	seedVariant(t, db, "prod-a", "Standard", 5)
	seedVariant(t, db, "prod-b", "Large", 2)

	requests := []StockReservationRequest{
		{ProductID: "prod-a", VariantName: "Standard", Qty: 2},
		{ProductID: "prod-a", VariantName: "Standard", Qty: 1},
		{ProductID: "prod-b", VariantName: "Large", Qty: 2},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReserveStock(ctx, tx, requests)
	})
	if err != nil {
		t.Fatalf("reserve transaction: %v", err)
	}

	if got := variantStock(t, db, "prod-a", "Standard"); got != 2 {
		t.Fatalf("expected prod-a stock 2, got %d", got)
	}
	if got := variantStock(t, db, "prod-b", "Large"); got != 0 {
		t.Fatalf("expected prod-b stock 0, got %d", got)
	}
}

func TestReserveStockShortageAbortsEverything(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	seedVariant(t, db, "prod-a", "Standard", 5)
	seedVariant(t, db, "prod-b", "Standard", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReserveStock(ctx, tx, []StockReservationRequest{
			{ProductID: "prod-a", VariantName: "Standard", Qty: 3},
			{ProductID: "prod-b", VariantName: "Standard", Qty: 2},
		})
	})
	if err == nil {
		t.Fatal("expected shortage error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rollback must leave both variants untouched, including the one that
	// individually had enough stock.
	if got := variantStock(t, db, "prod-a", "Standard"); got != 5 {
		t.Fatalf("expected prod-a stock 5 after rollback, got %d", got)
	}
	if got := variantStock(t, db, "prod-b", "Standard"); got != 1 {
		t.Fatalf("expected prod-b stock 1 after rollback, got %d", got)
	}
}

func TestReserveStockMissingVariant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	seedVariant(t, db, "prod-a", "Standard", 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReserveStock(ctx, tx, []StockReservationRequest{
			{ProductID: "prod-a", VariantName: "Jumbo", Qty: 1},
		})
	})
	if err == nil {
		t.Fatal("expected missing-variant error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReserveStockDefaultsVariantName(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	seedVariant(t, db, "prod-a", models.DefaultVariantName, 4)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ReserveStock(ctx, tx, []StockReservationRequest{
			{ProductID: "prod-a", VariantName: "", Qty: 4},
		})
	})
	if err != nil {
		t.Fatalf("reserve with defaulted variant: %v", err)
	}
	if got := variantStock(t, db, "prod-a", models.DefaultVariantName); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestReserveStockInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	err := ReserveStock(context.Background(), db, []StockReservationRequest{
		{ProductID: "prod-a", VariantName: "Standard", Qty: 0},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, "reservation")
}

func seedVariant(t *testing.T, db *gorm.DB, productID, name string, stock int) {
	t.Helper()
	variant := models.ProductVariant{
		ProductID: productID,
		Name:      name,
		Price:     decimal.NewFromInt(1300),
		Stock:     stock,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
}

func variantStock(t *testing.T, db *gorm.DB, productID, name string) int {
	t.Helper()
	var variant models.ProductVariant
	if err := db.First(&variant, "product_id = ? AND name = ?", productID, name).Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	return variant.Stock
}
