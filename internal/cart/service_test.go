package cart

import (
	"context"
	"testing"

	"github.com/emekaobi/freshbasket-backend/internal/products"
	"github.com/emekaobi/freshbasket-backend/pkg/db/dbtest"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return dbtest.Open(t, "cart")
}

func newTestService(t *testing.T) Service {
	t.Helper()
	db := newTestDB(t)
	catalog, err := products.NewService(products.NewRepository(db))
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	seed := products.UpsertProductInput{
		ID:   "2",
		Name: "Egusi Soup",
		Variants: []products.UpsertVariantInput{
			{Name: models.DefaultVariantName, Price: decimal.RequireFromString("13000.00"), Stock: 5},
			{Name: "Family Size", Price: decimal.RequireFromString("25000.00"), Stock: 3},
		},
	}
	if _, err := catalog.AdminUpsert(context.Background(), seed); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	inactive := products.UpsertProductInput{ID: "off", Name: "Retired"}
	if _, err := catalog.AdminUpsert(context.Background(), inactive); err != nil {
		t.Fatalf("seed inactive product: %v", err)
	}
	if err := catalog.AdminSetActive(context.Background(), "off", false); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	svc, err := NewService(NewRepository(db), catalog)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	return svc
}

func TestService_SetItemSnapshotsPrice(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	view, err := svc.SetItem(ctx, "user-7", SetItemInput{ProductID: "2", Qty: 2})
	if err != nil {
		t.Fatalf("set item: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(view.Items))
	}
	line := view.Items[0]
	if line.VariantName != models.DefaultVariantName {
		t.Fatalf("expected default variant, got %q", line.VariantName)
	}
	if !line.UnitPrice.Equal(decimal.RequireFromString("13000.00")) {
		t.Fatalf("unexpected unit price %s", line.UnitPrice)
	}
	if !view.Subtotal.Equal(decimal.RequireFromString("26000.00")) {
		t.Fatalf("unexpected subtotal %s", view.Subtotal)
	}
}

func TestService_SetItemReplacesQty(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetItem(ctx, "user-7", SetItemInput{ProductID: "2", Qty: 2}); err != nil {
		t.Fatalf("set item: %v", err)
	}
	view, err := svc.SetItem(ctx, "user-7", SetItemInput{ProductID: "2", Qty: 5})
	if err != nil {
		t.Fatalf("replace item: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(view.Items))
	}
	if view.Items[0].Qty != 5 {
		t.Fatalf("expected qty 5, got %d", view.Items[0].Qty)
	}
}

func TestService_SetItemZeroQtyRemoves(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetItem(ctx, "user-7", SetItemInput{ProductID: "2", Qty: 2}); err != nil {
		t.Fatalf("set item: %v", err)
	}
	view, err := svc.SetItem(ctx, "user-7", SetItemInput{ProductID: "2", Qty: 0})
	if err != nil {
		t.Fatalf("zero qty: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Items))
	}
}

func TestService_SetItemInactiveProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.SetItem(context.Background(), "user-7", SetItemInput{ProductID: "off", Qty: 1})
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_SetItemUnknownVariant(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.SetItem(context.Background(), "user-7", SetItemInput{ProductID: "2", VariantName: "Mega", Qty: 1})
	if err == nil {
		t.Fatal("expected not found")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Clear(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetItem(ctx, "user-7", SetItemInput{ProductID: "2", Qty: 1}); err != nil {
		t.Fatalf("set item: %v", err)
	}
	if _, err := svc.SetItem(ctx, "user-7", SetItemInput{ProductID: "2", VariantName: "Family Size", Qty: 1}); err != nil {
		t.Fatalf("set item: %v", err)
	}

	removed, err := svc.Clear(ctx, "user-7")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed lines, got %d", removed)
	}

	view, err := svc.List(ctx, "user-7")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Items))
	}
	if !view.Subtotal.Equal(decimal.Zero) {
		t.Fatalf("expected zero subtotal, got %s", view.Subtotal)
	}
}
