package quotes

import (
	"context"
	"testing"

	"github.com/emekaobi/freshbasket-backend/pkg/db/dbtest"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db := dbtest.Open(t, "quotes")
	svc, err := NewService(NewRepository(db), nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func submitQuote(t *testing.T, svc Service, userID string) *models.QuoteRequest {
	t.Helper()
	quote, err := svc.Submit(context.Background(), userID, []QuoteItem{
		{Name: "Imported Ogbono", Qty: 3},
		{Name: "Dried Catfish", Qty: 2},
	})
	if err != nil {
		t.Fatalf("submit quote: %v", err)
	}
	return quote
}

func priceQuote(t *testing.T, svc Service, quoteID string) *models.QuoteRequest {
	t.Helper()
	quote, err := svc.AdminPrice(context.Background(), quoteID, []QuoteItem{
		{Name: "Imported Ogbono", Qty: 3, UnitCost: decimal.RequireFromString("4500.00")},
		{Name: "Dried Catfish", Qty: 2, UnitCost: decimal.RequireFromString("6000.00")},
	}, decimal.RequireFromString("1500.00"))
	if err != nil {
		t.Fatalf("price quote: %v", err)
	}
	return quote
}

func TestService_SubmitStartsPendingReview(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	quote := submitQuote(t, svc, "user-7")

	if quote.Status != enums.QuoteStatusPendingReview {
		t.Fatalf("unexpected status %s", quote.Status)
	}
	items, err := DecodeItems(quote.Items)
	if err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestService_SubmitRejectsPricedItems(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.Submit(context.Background(), "user-7", []QuoteItem{
		{Name: "Ogbono", Qty: 1, UnitCost: decimal.NewFromInt(100)},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_PriceAcceptPayLifecycle(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	quote := submitQuote(t, svc, "user-7")
	priced := priceQuote(t, svc, quote.ID)
	if priced.Status != enums.QuoteStatusQuoteReady {
		t.Fatalf("unexpected status %s", priced.Status)
	}

	total, err := svc.Total(priced)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	// 3*4500 + 2*6000 + 1500 shipping.
	if !total.Equal(decimal.RequireFromString("27000.00")) {
		t.Fatalf("unexpected total %s", total)
	}

	accepted, err := svc.Accept(ctx, "user-7", quote.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != enums.QuoteStatusAccepted {
		t.Fatalf("unexpected status %s", accepted.Status)
	}

	if err := svc.MarkPaid(ctx, quote.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	paid, err := svc.GetForUser(ctx, "user-7", quote.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if paid.Status != enums.QuoteStatusPaid {
		t.Fatalf("unexpected status %s", paid.Status)
	}
}

func TestService_MarkPaidRequiresAccepted(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	quote := submitQuote(t, svc, "user-7")

	err := svc.MarkPaid(context.Background(), quote.ID)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_MarkPaidTwice(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	quote := submitQuote(t, svc, "user-7")
	priceQuote(t, svc, quote.ID)
	if _, err := svc.Accept(ctx, "user-7", quote.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := svc.MarkPaid(ctx, quote.ID); err != nil {
		t.Fatalf("first mark paid: %v", err)
	}

	err := svc.MarkPaid(ctx, quote.ID)
	if err == nil {
		t.Fatal("expected state conflict on second payment")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_AcceptRequiresOwnership(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	quote := submitQuote(t, svc, "user-7")
	priceQuote(t, svc, quote.ID)

	_, err := svc.Accept(context.Background(), "user-8", quote.ID)
	if err == nil {
		t.Fatal("expected not found")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_PriceRequiresReviewableState(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	quote := submitQuote(t, svc, "user-7")
	if err := svc.Reject(context.Background(), quote.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err := svc.AdminPrice(context.Background(), quote.ID, []QuoteItem{
		{Name: "Ogbono", Qty: 1, UnitCost: decimal.NewFromInt(100)},
	}, decimal.Zero)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
