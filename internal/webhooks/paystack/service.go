package paystackwebhook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emekaobi/freshbasket-backend/internal/cart"
	"github.com/emekaobi/freshbasket-backend/internal/checkout/reservation"
	"github.com/emekaobi/freshbasket-backend/internal/ledger"
	"github.com/emekaobi/freshbasket-backend/internal/notifications"
	"github.com/emekaobi/freshbasket-backend/internal/orders"
	"github.com/emekaobi/freshbasket-backend/internal/quotes"
	"github.com/emekaobi/freshbasket-backend/pkg/db"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"
	"github.com/emekaobi/freshbasket-backend/pkg/metrics"
	"github.com/emekaobi/freshbasket-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Outcome summarizes what one delivery did.
type Outcome string

const (
	// OutcomeCreated means an order was materialized from the charge.
	OutcomeCreated Outcome = "created"
	// OutcomeDuplicate means the charge was already processed.
	OutcomeDuplicate Outcome = "duplicate"
)

// Result reports the pipeline's effect for a successfully handled delivery.
type Result struct {
	Outcome Outcome
	Order   *models.Order
}

const ledgerSaleCategory = "Online Store"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams collects the pipeline's dependencies.
type ServiceParams struct {
	TransactionRunner txRunner
	OrdersRepo        orders.Repository
	Ledger            ledger.Service
	Quotes            quotes.Service
	Cart              cart.Service
	Notifier          notifications.Notifier
	Metrics           *metrics.WebhookMetrics
	Logger            *logger.Logger
	TxMaxRetries      uint64
	TxRetryBackoff    time.Duration
}

// Service turns verified charge.success events into orders, stock
// decrements and ledger rows inside one transaction.
type Service struct {
	txRunner       txRunner
	ordersRepo     orders.Repository
	ledger         ledger.Service
	quotes         quotes.Service
	cart           cart.Service
	notifier       notifications.Notifier
	metrics        *metrics.WebhookMetrics
	logg           *logger.Logger
	txMaxRetries   uint64
	txRetryBackoff time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service required")
	}
	if params.Quotes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "quotes service required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service required")
	}
	backoff := params.TxRetryBackoff
	if backoff <= 0 {
		backoff = 50 * time.Millisecond
	}
	return &Service{
		txRunner:       params.TransactionRunner,
		ordersRepo:     params.OrdersRepo,
		ledger:         params.Ledger,
		quotes:         params.Quotes,
		cart:           params.Cart,
		notifier:       params.Notifier,
		metrics:        params.Metrics,
		logg:           params.Logger,
		txMaxRetries:   params.TxMaxRetries,
		txRetryBackoff: backoff,
	}, nil
}

// HandleChargeSuccess materializes one verified charge. The call is
// idempotent on the payment reference: redeliveries of an already-processed
// charge return OutcomeDuplicate without side effects.
func (s *Service) HandleChargeSuccess(ctx context.Context, event *Event) (*Result, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveDuration(time.Since(started)) }()

	input, err := s.validate(event)
	if err != nil {
		return nil, err
	}
	ctx = s.withLogFields(ctx, input)

	var created *models.Order
	duplicate := false

	txErr := s.runTx(ctx, func(tx *gorm.DB) error {
		created = nil
		duplicate = false

		ordersRepo := s.ordersRepo.WithTx(tx)
		existing, err := ordersRepo.FindByPaymentReference(ctx, input.reference)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check payment reference")
		}
		if existing != nil {
			duplicate = true
			created = existing
			return nil
		}

		if input.source == enums.OrderSourceCart {
			if err := reservation.ReserveStock(ctx, tx, input.reservations); err != nil {
				return err
			}
		}

		order, err := ordersRepo.Create(ctx, input.order())
		if err != nil {
			if db.IsUniqueViolation(err, models.UniqueConstraintPaymentReference) {
				duplicate = true
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		_, err = s.ledger.WithTx(tx).RecordEntry(ctx, ledger.RecordEntryInput{
			Description: fmt.Sprintf("Order %s", input.reference),
			Category:    ledgerSaleCategory,
			Type:        enums.LedgerEntryTypeSale,
			Amount:      input.total,
			OrderID:     &order.ID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ledger entry")
		}

		created = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if duplicate {
		if created == nil {
			// Lost the insert race: the other delivery's transaction owns the
			// order. Resolve it outside the aborted transaction.
			existing, err := s.ordersRepo.FindByPaymentReference(ctx, input.reference)
			if err == nil {
				created = existing
			}
		}
		s.metrics.IncDuplicate()
		return &Result{Outcome: OutcomeDuplicate, Order: created}, nil
	}

	s.metrics.IncOrderCreated()
	s.dispatchSideEffects(ctx, input, created)
	return &Result{Outcome: OutcomeCreated, Order: created}, nil
}

// runTx retries the whole transaction on transient conflicts (serialization
// failures and deadlocks). Anything else surfaces immediately.
func (s *Service) runTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	backoff := retry.WithMaxRetries(s.txMaxRetries, retry.NewConstant(s.txRetryBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.txRunner.WithTx(ctx, fn)
		if err == nil {
			return nil
		}
		if db.IsSerializationFailure(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

type chargeInput struct {
	reference    string
	userID       string
	email        string
	source       enums.OrderSource
	sourceID     *string
	total        decimal.Decimal
	itemCount    int
	lines        []OrderLine
	reservations []reservation.StockReservationRequest
}

func (in *chargeInput) order() *models.Order {
	items := make([]models.OrderItem, 0, len(in.lines))
	for _, line := range in.lines {
		name, variant := ParseDisplayName(line.Name)
		items = append(items, models.OrderItem{
			ProductID:   line.ID,
			Name:        name,
			VariantName: variant,
			Qty:         line.Qty,
			Price:       line.Price,
			ImageID:     line.ImageID,
		})
	}
	return &models.Order{
		ID:               uuid.New(),
		UserID:           in.userID,
		Status:           enums.OrderStatusAwaitingConfirmation,
		ItemCount:        in.itemCount,
		Total:            in.total,
		PaymentReference: in.reference,
		Source:           in.source,
		SourceID:         in.sourceID,
		Items:            items,
	}
}

func (s *Service) validate(event *Event) (*chargeInput, error) {
	if event == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event required")
	}
	if event.Event != EventChargeSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported event %q", event.Event))
	}
	reference := strings.TrimSpace(event.Data.Reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge reference required")
	}
	if event.Data.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	meta := event.Data.Metadata
	if strings.TrimSpace(meta.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "metadata user_id required")
	}

	source := enums.OrderSourceCart
	if meta.OrderType != "" {
		parsed, err := enums.ParseOrderSource(meta.OrderType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "metadata order_type")
		}
		source = parsed
	}
	var sourceID *string
	if source == enums.OrderSourceQuote {
		ref := strings.TrimSpace(meta.OrderRef)
		if ref == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote orders require metadata order_ref")
		}
		sourceID = &ref
	}

	lines, err := DecodeOrderLines(meta.OrderItems)
	if err != nil {
		return nil, err
	}

	itemCount := 0
	var reservations []reservation.StockReservationRequest
	for _, line := range lines {
		itemCount += line.Qty
		if source == enums.OrderSourceCart {
			if strings.TrimSpace(line.ID) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart order lines require a product id")
			}
			_, variant := ParseDisplayName(line.Name)
			reservations = append(reservations, reservation.StockReservationRequest{
				ProductID:   line.ID,
				VariantName: variant,
				Qty:         line.Qty,
			})
		}
	}

	return &chargeInput{
		reference:    reference,
		userID:       meta.UserID,
		email:        event.Data.Customer.Email,
		source:       source,
		sourceID:     sourceID,
		total:        money.FromMinorUnits(event.Data.Amount),
		itemCount:    itemCount,
		lines:        lines,
		reservations: reservations,
	}, nil
}

// dispatchSideEffects runs the post-commit conveniences. Failures here never
// fail the delivery; the order is already durable. That includes the quote
// accepted -> paid edge: a charge against a quote in the wrong state still
// materializes its order, and the stale quote is only logged.
func (s *Service) dispatchSideEffects(ctx context.Context, input *chargeInput, order *models.Order) {
	var errs error

	switch input.source {
	case enums.OrderSourceCart:
		if _, err := s.cart.Clear(ctx, input.userID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("clear cart: %w", err))
		}
	case enums.OrderSourceQuote:
		if err := s.quotes.MarkPaid(ctx, *input.sourceID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark quote paid: %w", err))
		}
	}

	if s.notifier != nil {
		href := fmt.Sprintf("/admin/orders/%s", order.ID)
		icon := "shopping-bag"
		err := s.notifier.Notify(ctx, notifications.Message{
			Recipient:   enums.NotificationRecipientAdmin,
			Title:       "New order",
			Description: fmt.Sprintf("Order %s for %s is awaiting confirmation.", input.reference, order.Total.StringFixed(2)),
			Href:        &href,
			Icon:        &icon,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("admin notification: %w", err))
		}
	}

	if errs != nil && s.logg != nil {
		s.logg.Error(ctx, "webhook side effects incomplete", errs)
	}
}

func (s *Service) withLogFields(ctx context.Context, input *chargeInput) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithPaymentRef(ctx, input.reference)
	return s.logg.WithUserID(ctx, input.userID)
}
