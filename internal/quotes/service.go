package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emekaobi/freshbasket-backend/internal/notifications"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteItem is one requested line inside a quote document. UnitCost stays
// zero until an admin prices the request.
type QuoteItem struct {
	Name     string          `json:"name" validate:"required"`
	Qty      int             `json:"qty" validate:"gte=1"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Notes    string          `json:"notes,omitempty"`
}

// Service defines the quote request lifecycle.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Submit(ctx context.Context, userID string, items []QuoteItem) (*models.QuoteRequest, error)
	GetForUser(ctx context.Context, userID, quoteID string) (*models.QuoteRequest, error)
	ListForUser(ctx context.Context, userID string) ([]models.QuoteRequest, error)
	AdminList(ctx context.Context, status enums.QuoteStatus) ([]models.QuoteRequest, error)
	AdminPrice(ctx context.Context, quoteID string, items []QuoteItem, shippingCost decimal.Decimal) (*models.QuoteRequest, error)
	Accept(ctx context.Context, userID, quoteID string) (*models.QuoteRequest, error)
	Reject(ctx context.Context, quoteID string) error
	Expire(ctx context.Context, quoteID string) error
	MarkPaid(ctx context.Context, quoteID string) error
	Total(quote *models.QuoteRequest) (decimal.Decimal, error)
}

type service struct {
	repo     Repository
	notifier notifications.Notifier
	logg     *logger.Logger
}

// NewService wires quote dependencies. The notifier may be nil.
func NewService(repo Repository, notifier notifications.Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	return &service{repo: repo, notifier: notifier, logg: logg}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), notifier: s.notifier, logg: s.logg}
}

func (s *service) Submit(ctx context.Context, userID string, items []QuoteItem) (*models.QuoteRequest, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote requires at least one item")
	}
	for _, item := range items {
		if item.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote item name required")
		}
		if item.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote item qty must be at least 1")
		}
		// Unit costs are assigned during review, never by the requester.
		if !item.UnitCost.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote items must not carry unit costs")
		}
	}

	doc, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quote items")
	}
	quote := &models.QuoteRequest{
		ID:           uuid.NewString(),
		UserID:       userID,
		Status:       enums.QuoteStatusPendingReview,
		Items:        doc,
		ShippingCost: decimal.Zero,
	}
	if err := s.repo.Create(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
	}

	s.notifyAdmin(ctx, "New quote request",
		fmt.Sprintf("A quote request with %d item(s) is awaiting review.", len(items)),
		fmt.Sprintf("/admin/quotes/%s", quote.ID))
	return quote, nil
}

func (s *service) GetForUser(ctx context.Context, userID, quoteID string) (*models.QuoteRequest, error) {
	if userID == "" || quoteID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and quote id required")
	}
	quote, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return quote, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]models.QuoteRequest, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	quotes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return quotes, nil
}

func (s *service) AdminList(ctx context.Context, status enums.QuoteStatus) ([]models.QuoteRequest, error) {
	if status != "" && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid quote status %q", status))
	}
	quotes, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return quotes, nil
}

// AdminPrice assigns unit costs and shipping and moves the quote to
// quote_ready, making it payable once the customer accepts.
func (s *service) AdminPrice(ctx context.Context, quoteID string, items []QuoteItem, shippingCost decimal.Decimal) (*models.QuoteRequest, error) {
	if quoteID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "priced quote requires at least one item")
	}
	for _, item := range items {
		if item.Name == "" || item.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote item")
		}
		if item.UnitCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost must not be negative")
		}
	}
	if shippingCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping cost must not be negative")
	}

	quote, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if !quote.Status.CanTransitionTo(enums.QuoteStatusQuoteReady) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot price quote in status %s", quote.Status))
	}

	doc, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quote items")
	}
	quote.Items = doc
	quote.ShippingCost = shippingCost
	quote.Status = enums.QuoteStatusQuoteReady
	if err := s.repo.Update(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote")
	}

	s.notifyUser(ctx, quote.UserID, "Your quote is ready",
		"We have priced your custom order. Review and accept it to pay.",
		fmt.Sprintf("/quotes/%s", quote.ID))
	return quote, nil
}

func (s *service) Accept(ctx context.Context, userID, quoteID string) (*models.QuoteRequest, error) {
	quote, err := s.GetForUser(ctx, userID, quoteID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, quote, enums.QuoteStatusAccepted); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) Reject(ctx context.Context, quoteID string) error {
	quote, err := s.load(ctx, quoteID)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, quote, enums.QuoteStatusRejected); err != nil {
		return err
	}
	s.notifyUser(ctx, quote.UserID, "Quote declined",
		"We are unable to fulfil your custom order request.",
		fmt.Sprintf("/quotes/%s", quote.ID))
	return nil
}

func (s *service) Expire(ctx context.Context, quoteID string) error {
	quote, err := s.load(ctx, quoteID)
	if err != nil {
		return err
	}
	return s.transition(ctx, quote, enums.QuoteStatusExpired)
}

// MarkPaid performs the accepted -> paid edge. Any other source state is a
// conflict; the payment pipeline treats that as a non-retryable failure.
func (s *service) MarkPaid(ctx context.Context, quoteID string) error {
	if quoteID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	affected, err := s.repo.UpdateStatus(ctx, quoteID, enums.QuoteStatusAccepted, enums.QuoteStatusPaid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark quote paid")
	}
	if affected == 0 {
		quote, loadErr := s.load(ctx, quoteID)
		if loadErr != nil {
			return loadErr
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot mark quote paid from status %s", quote.Status))
	}
	return nil
}

// Total sums the priced items plus shipping.
func (s *service) Total(quote *models.QuoteRequest) (decimal.Decimal, error) {
	items, err := DecodeItems(quote.Items)
	if err != nil {
		return decimal.Zero, err
	}
	total := quote.ShippingCost
	for _, item := range items {
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return total, nil
}

// DecodeItems parses the stored quote document.
func DecodeItems(doc json.RawMessage) ([]QuoteItem, error) {
	var items []QuoteItem
	if err := json.Unmarshal(doc, &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode quote items")
	}
	return items, nil
}

func (s *service) load(ctx context.Context, quoteID string) (*models.QuoteRequest, error) {
	quote, err := s.repo.FindByID(ctx, quoteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

func (s *service) transition(ctx context.Context, quote *models.QuoteRequest, next enums.QuoteStatus) error {
	if !quote.Status.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move quote from %s to %s", quote.Status, next))
	}
	affected, err := s.repo.UpdateStatus(ctx, quote.ID, quote.Status, next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "quote changed state concurrently")
	}
	quote.Status = next
	return nil
}

func (s *service) notifyAdmin(ctx context.Context, title, description, href string) {
	s.notify(ctx, notifications.Message{
		Recipient:   enums.NotificationRecipientAdmin,
		Title:       title,
		Description: description,
		Href:        &href,
	})
}

func (s *service) notifyUser(ctx context.Context, userID, title, description, href string) {
	s.notify(ctx, notifications.Message{
		Recipient:   enums.NotificationRecipientUser,
		RecipientID: userID,
		Title:       title,
		Description: description,
		Href:        &href,
	})
}

func (s *service) notify(ctx context.Context, msg notifications.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, msg); err != nil && s.logg != nil {
		s.logg.Error(ctx, "quote notification failed", err)
	}
}
