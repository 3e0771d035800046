package products

import (
	"context"
	"testing"

	"github.com/emekaobi/freshbasket-backend/pkg/db/dbtest"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, "products")
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, db
}

func boolPtr(v bool) *bool { return &v }

func TestService_AdminUpsertAndGet(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.AdminUpsert(ctx, UpsertProductInput{
		ID:   "2",
		Name: "Egusi Soup",
		Variants: []UpsertVariantInput{
			{Name: models.DefaultVariantName, Price: decimal.RequireFromString("13000.00"), Stock: 5},
		},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(product.Variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(product.Variants))
	}
	if product.Variants[0].Stock != 5 {
		t.Fatalf("expected stock 5, got %d", product.Variants[0].Stock)
	}

	got, err := svc.Get(ctx, "2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Egusi Soup" {
		t.Fatalf("unexpected name %q", got.Name)
	}
}

func TestService_AdminUpsertUpdatesExisting(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminUpsert(ctx, UpsertProductInput{ID: "p1", Name: "Rice"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	updated, err := svc.AdminUpsert(ctx, UpsertProductInput{
		ID:       "p1",
		Name:     "Jollof Rice",
		IsActive: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.Name != "Jollof Rice" {
		t.Fatalf("unexpected name %q", updated.Name)
	}
	if updated.IsActive {
		t.Fatal("expected product to be inactive")
	}
}

func TestService_ListFiltersInactive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminUpsert(ctx, UpsertProductInput{ID: "a", Name: "Beans"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.AdminUpsert(ctx, UpsertProductInput{ID: "b", Name: "Yam", IsActive: boolPtr(false)}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	visible, err := svc.List(ctx, ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != "a" {
		t.Fatalf("expected only active product, got %+v", visible)
	}

	all, err := svc.List(ctx, ListParams{IncludeInactive: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
}

func TestService_AdminRestock(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminUpsert(ctx, UpsertProductInput{
		ID:   "p1",
		Name: "Rice",
		Variants: []UpsertVariantInput{
			{Name: models.DefaultVariantName, Price: decimal.NewFromInt(500), Stock: 3},
		},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := svc.AdminRestock(ctx, "p1", "", 7); err != nil {
		t.Fatalf("restock: %v", err)
	}
	variant, err := svc.GetVariant(ctx, "p1", models.DefaultVariantName)
	if err != nil {
		t.Fatalf("get variant: %v", err)
	}
	if variant.Stock != 10 {
		t.Fatalf("expected stock 10, got %d", variant.Stock)
	}
}

func TestService_AdminRestockBelowZero(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AdminUpsert(ctx, UpsertProductInput{
		ID:   "p1",
		Name: "Rice",
		Variants: []UpsertVariantInput{
			{Name: models.DefaultVariantName, Price: decimal.NewFromInt(500), Stock: 2},
		},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	err := svc.AdminRestock(ctx, "p1", "", -5)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	variant, err := svc.GetVariant(ctx, "p1", models.DefaultVariantName)
	if err != nil {
		t.Fatalf("get variant: %v", err)
	}
	if variant.Stock != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", variant.Stock)
	}
}

func TestService_AdminRestockMissingVariant(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	err := svc.AdminRestock(context.Background(), "ghost", "", 1)
	if err == nil {
		t.Fatal("expected not found")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_GetMissing(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected not found")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
