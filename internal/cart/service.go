package cart

import (
	"context"
	"fmt"

	"github.com/emekaobi/freshbasket-backend/internal/products"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// Service defines cart line operations. Prices are snapshotted from the
// catalog when a line is written, not at read time.
type Service interface {
	List(ctx context.Context, userID string) (*CartView, error)
	SetItem(ctx context.Context, userID string, input SetItemInput) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID, variantName string) (*CartView, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

// SetItemInput writes one cart line as absolute state. Qty 0 removes the line.
type SetItemInput struct {
	ProductID   string `json:"product_id" validate:"required"`
	VariantName string `json:"variant_name"`
	Qty         int    `json:"qty" validate:"gte=0"`
}

// CartView is the cart as returned to the storefront.
type CartView struct {
	Items    []models.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

type service struct {
	repo    Repository
	catalog products.Service
}

// NewService wires cart dependencies.
func NewService(repo Repository, catalog products.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

func (s *service) List(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart")
	}
	return buildView(items), nil
}

func (s *service) SetItem(ctx context.Context, userID string, input SetItemInput) (*CartView, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must not be negative")
	}

	variantName := input.VariantName
	if variantName == "" {
		variantName = models.DefaultVariantName
	}

	if input.Qty == 0 {
		return s.RemoveItem(ctx, userID, input.ProductID, variantName)
	}

	product, err := s.catalog.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
	}
	variant, err := s.catalog.GetVariant(ctx, input.ProductID, variantName)
	if err != nil {
		return nil, err
	}

	item := models.CartItem{
		UserID:      userID,
		ProductID:   product.ID,
		VariantName: variant.Name,
		Name:        product.Name,
		Qty:         input.Qty,
		UnitPrice:   variant.Price,
		ImageID:     product.ImageID,
	}
	if err := s.repo.Upsert(ctx, &item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
	}
	return s.List(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID, variantName string) (*CartView, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if variantName == "" {
		variantName = models.DefaultVariantName
	}
	if _, err := s.repo.Delete(ctx, userID, productID, variantName); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.List(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	removed, err := s.repo.ClearForUser(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return removed, nil
}

func buildView(items []models.CartItem) *CartView {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return &CartView{Items: items, Subtotal: subtotal}
}
