// Package reservation decrements variant stock for an order as one
// all-or-nothing unit inside the caller's transaction.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"gorm.io/gorm"
)

// StockReservationRequest asks for qty units of one product variant.
type StockReservationRequest struct {
	ProductID   string
	VariantName string
	Qty         int
}

// ReserveStock verifies and decrements stock for every request inside tx.
// Requests for the same variant are merged before locking. If any variant is
// missing or short, an error is returned and the caller's transaction must be
// rolled back: no partial decrement survives.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockReservationRequest) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction handle required")
	}
	if len(requests) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one reservation request required")
	}

	merged, err := mergeRequests(requests)
	if err != nil {
		return err
	}

	for _, req := range merged {
		if err := reserveOne(ctx, tx, req); err != nil {
			return err
		}
	}
	return nil
}

// reserveOne performs a guarded decrement: the row is only updated when it
// still holds enough stock, so concurrent checkouts of the last unit cannot
// both pass the check.
func reserveOne(ctx context.Context, tx *gorm.DB, req StockReservationRequest) error {
	result := tx.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ? AND name = ? AND stock >= ?", req.ProductID, req.VariantName, req.Qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", req.Qty))
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "decrement variant stock")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// The guarded update matched nothing: either the variant does not exist
	// or it is short. Look it up to produce a precise error.
	var variant models.ProductVariant
	err := tx.WithContext(ctx).
		Where("product_id = ? AND name = ?", req.ProductID, req.VariantName).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("product %s variant %q not found", req.ProductID, req.VariantName)).
			WithDetails(map[string]any{
				"product_id":   req.ProductID,
				"variant_name": req.VariantName,
				"reason":       "missing",
			})
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant stock")
	}

	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("insufficient stock for product %s variant %q: available %d, requested %d",
			req.ProductID, req.VariantName, variant.Stock, req.Qty)).
		WithDetails(map[string]any{
			"product_id":   req.ProductID,
			"variant_name": req.VariantName,
			"available":    variant.Stock,
			"requested":    req.Qty,
			"reason":       "insufficient",
		})
}

// mergeRequests validates inputs and collapses duplicate variant lines into a
// single request, keyed and sorted deterministically so concurrent
// transactions lock rows in the same order.
func mergeRequests(requests []StockReservationRequest) ([]StockReservationRequest, error) {
	type key struct {
		productID string
		variant   string
	}
	totals := map[key]int{}
	for _, req := range requests {
		if strings.TrimSpace(req.ProductID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation product id required")
		}
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("reservation qty for product %s must be positive", req.ProductID))
		}
		variant := req.VariantName
		if strings.TrimSpace(variant) == "" {
			variant = models.DefaultVariantName
		}
		totals[key{productID: req.ProductID, variant: variant}] += req.Qty
	}

	merged := make([]StockReservationRequest, 0, len(totals))
	for k, qty := range totals {
		merged = append(merged, StockReservationRequest{
			ProductID:   k.productID,
			VariantName: k.variant,
			Qty:         qty,
		})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].ProductID != merged[j].ProductID {
			return merged[i].ProductID < merged[j].ProductID
		}
		return merged[i].VariantName < merged[j].VariantName
	})
	return merged, nil
}
