package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service defines catalog read and admin management operations.
type Service interface {
	List(ctx context.Context, params ListParams) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	GetVariant(ctx context.Context, productID, variantName string) (*models.ProductVariant, error)
	AdminUpsert(ctx context.Context, input UpsertProductInput) (*models.Product, error)
	AdminRestock(ctx context.Context, productID, variantName string, delta int) error
	AdminSetActive(ctx context.Context, id string, active bool) error
}

// ListParams filters catalog listings.
type ListParams struct {
	IncludeInactive bool
	Search          string
	Limit           int
	Offset          int
}

// UpsertProductInput carries a full product definition from the admin surface.
type UpsertProductInput struct {
	ID          string              `json:"id" validate:"required"`
	Name        string              `json:"name" validate:"required"`
	Description *string             `json:"description"`
	ImageID     *string             `json:"image_id"`
	IsActive    *bool               `json:"is_active"`
	Variants    []UpsertVariantInput `json:"variants" validate:"dive"`
}

// UpsertVariantInput carries one priced variant of a product.
type UpsertVariantInput struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

type service struct {
	repo Repository
}

// NewService wires catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	products, err := s.repo.List(ctx, listProductsParams{
		IncludeInactive: params.IncludeInactive,
		Search:          params.Search,
		Limit:           params.Limit,
		Offset:          params.Offset,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetVariant(ctx context.Context, productID, variantName string) (*models.ProductVariant, error) {
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if variantName == "" {
		variantName = models.DefaultVariantName
	}
	variant, err := s.repo.FindVariant(ctx, productID, variantName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product variant")
	}
	return variant, nil
}

func (s *service) AdminUpsert(ctx context.Context, input UpsertProductInput) (*models.Product, error) {
	if input.ID == "" || input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and name required")
	}
	for _, variant := range input.Variants {
		if variant.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name required")
		}
		if variant.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price must not be negative")
		}
		if variant.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant stock must not be negative")
		}
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	product := &models.Product{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		ImageID:     input.ImageID,
		IsActive:    active,
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product")
	}
	for _, variant := range input.Variants {
		err := s.repo.SaveVariant(ctx, &models.ProductVariant{
			ProductID: input.ID,
			Name:      variant.Name,
			Price:     variant.Price,
			Stock:     variant.Stock,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product variant")
		}
	}
	return s.Get(ctx, input.ID)
}

func (s *service) AdminRestock(ctx context.Context, productID, variantName string, delta int) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if delta == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock delta must not be zero")
	}
	if variantName == "" {
		variantName = models.DefaultVariantName
	}

	affected, err := s.repo.AdjustStock(ctx, productID, variantName, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	if affected == 0 {
		// Either the variant does not exist or the delta would push stock
		// below zero. Distinguish for the caller.
		if _, lookupErr := s.GetVariant(ctx, productID, variantName); lookupErr != nil {
			return lookupErr
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "stock adjustment would drop below zero")
	}
	return nil
}

func (s *service) AdminSetActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	affected, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}
