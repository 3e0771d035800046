// Package checkout initializes hosted-gateway payments for carts and
// accepted quotes. It never creates orders: orders exist only once the
// gateway confirms the charge through the webhook pipeline.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emekaobi/freshbasket-backend/internal/cart"
	"github.com/emekaobi/freshbasket-backend/internal/products"
	"github.com/emekaobi/freshbasket-backend/internal/quotes"
	checkoutvalidation "github.com/emekaobi/freshbasket-backend/pkg/checkout"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/money"
	"github.com/emekaobi/freshbasket-backend/pkg/paystack"
	"github.com/shopspring/decimal"
)

// PaymentGateway is the slice of the gateway client this service needs.
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
}

// Service starts hosted payments.
type Service interface {
	InitializeCartPayment(ctx context.Context, userID, email string) (*PaymentSession, error)
	InitializeQuotePayment(ctx context.Context, userID, email, quoteID string) (*PaymentSession, error)
}

// PaymentSession is what the storefront needs to send the customer to the
// gateway's hosted page.
type PaymentSession struct {
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
}

// metadataLine matches the order_items document the webhook pipeline decodes.
type metadataLine struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Price   decimal.Decimal `json:"price"`
	ImageID *string         `json:"image_id,omitempty"`
}

type metadataBag struct {
	UserID     string `json:"user_id"`
	OrderType  string `json:"order_type"`
	OrderRef   string `json:"order_ref,omitempty"`
	OrderItems string `json:"order_items"`
}

type service struct {
	gateway     PaymentGateway
	cart        cart.Service
	quotes      quotes.Service
	catalog     products.Service
	callbackURL string
}

// ServiceParams collects checkout dependencies.
type ServiceParams struct {
	Gateway     PaymentGateway
	Cart        cart.Service
	Quotes      quotes.Service
	Catalog     products.Service
	CallbackURL string
}

// NewService wires checkout dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Quotes == nil {
		return nil, fmt.Errorf("quotes service required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{
		gateway:     params.Gateway,
		cart:        params.Cart,
		quotes:      params.Quotes,
		catalog:     params.Catalog,
		callbackURL: params.CallbackURL,
	}, nil
}

func (s *service) InitializeCartPayment(ctx context.Context, userID, email string) (*PaymentSession, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	view, err := s.cart.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	if err := s.precheckStock(ctx, view.Items); err != nil {
		return nil, err
	}

	lines := make([]metadataLine, 0, len(view.Items))
	for _, item := range view.Items {
		lines = append(lines, metadataLine{
			ID:      item.ProductID,
			Name:    displayName(item.Name, item.VariantName),
			Qty:     item.Qty,
			Price:   item.UnitPrice,
			ImageID: item.ImageID,
		})
	}

	return s.initialize(ctx, email, view.Subtotal, metadataBag{
		UserID:    userID,
		OrderType: enums.OrderSourceCart.String(),
	}, lines)
}

func (s *service) InitializeQuotePayment(ctx context.Context, userID, email, quoteID string) (*PaymentSession, error) {
	if strings.TrimSpace(email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	quote, err := s.quotes.GetForUser(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != enums.QuoteStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quote must be accepted before payment, current status is %s", quote.Status))
	}

	total, err := s.quotes.Total(quote)
	if err != nil {
		return nil, err
	}
	items, err := quotes.DecodeItems(quote.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]metadataLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, metadataLine{
			Name:  item.Name,
			Qty:   item.Qty,
			Price: item.UnitCost,
		})
	}

	return s.initialize(ctx, email, total, metadataBag{
		UserID:    userID,
		OrderType: enums.OrderSourceQuote.String(),
		OrderRef:  quote.ID,
	}, lines)
}

func (s *service) initialize(ctx context.Context, email string, total decimal.Decimal, bag metadataBag, lines []metadataLine) (*PaymentSession, error) {
	kobo, err := money.ToMinorUnits(total)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "convert amount")
	}
	if kobo <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment amount must be positive")
	}

	doc, err := json.Marshal(lines)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order items")
	}
	bag.OrderItems = string(doc)

	meta, err := json.Marshal(bag)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode metadata")
	}

	result, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       email,
		Amount:      kobo,
		CallbackURL: s.callbackURL,
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}

	return &PaymentSession{
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Reference:        result.Reference,
		Amount:           total,
	}, nil
}

// precheckStock is advisory only: it catches obviously dead checkouts before
// the customer reaches the gateway. The webhook re-checks atomically.
func (s *service) precheckStock(ctx context.Context, items []models.CartItem) error {
	inputs := make([]checkoutvalidation.AvailabilityInput, 0, len(items))
	for _, item := range items {
		variant, err := s.catalog.GetVariant(ctx, item.ProductID, item.VariantName)
		if err != nil {
			return err
		}
		inputs = append(inputs, checkoutvalidation.AvailabilityInput{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Available:   variant.Stock,
			Requested:   item.Qty,
		})
	}
	return checkoutvalidation.ValidateAvailability(inputs)
}

func displayName(name, variant string) string {
	if variant == "" || variant == models.DefaultVariantName {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, variant)
}
