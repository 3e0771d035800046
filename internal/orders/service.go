package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/emekaobi/freshbasket-backend/internal/notifications"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"
	"github.com/emekaobi/freshbasket-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes order read/manage operations. Order creation is owned by
// the payment webhook pipeline, never by this service.
type Service interface {
	GetForUser(ctx context.Context, userID string, orderID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID string, params ListQuery) (*ListResult, error)
	AdminList(ctx context.Context, params ListQuery) (*ListResult, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

// ListQuery configures pagination for order listings.
type ListQuery struct {
	Limit  int
	Cursor string
}

// ListResult wraps returned orders and the cursor for the next page.
type ListResult struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

type service struct {
	repo     Repository
	notifier notifications.Notifier
	logg     *logger.Logger
}

// NewService wires order dependencies. The notifier may be nil; status
// change notifications are best effort.
func NewService(repo Repository, notifier notifications.Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, notifier: notifier, logg: logg}, nil
}

func (s *service) GetForUser(ctx context.Context, userID string, orderID uuid.UUID) (*models.Order, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		// Hide other users' orders entirely.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListForUser(ctx context.Context, userID string, params ListQuery) (*ListResult, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	repoParams, err := buildListParams(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListByUser(ctx, userID, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildListResult(rows, next), nil
}

func (s *service) AdminList(ctx context.Context, params ListQuery) (*ListResult, error) {
	repoParams, err := buildListParams(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.List(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildListResult(rows, next), nil
}

func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", next))
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = next

	s.notifyStatusChange(ctx, order)
	return order, nil
}

// notifyStatusChange tells the purchaser their order moved. Failures are
// logged only; the transition has already been persisted.
func (s *service) notifyStatusChange(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	href := fmt.Sprintf("/orders/%s", order.ID)
	icon := "package"
	err := s.notifier.Notify(ctx, notifications.Message{
		Recipient:   enums.NotificationRecipientUser,
		RecipientID: order.UserID,
		Title:       "Order update",
		Description: fmt.Sprintf("Your order is now %s.", order.Status.Display()),
		Href:        &href,
		Icon:        &icon,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "order status notification failed", err)
	}
}

func buildListParams(params ListQuery) (ListParams, error) {
	repoParams := ListParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		repoParams.Cursor = cursor
	}
	return repoParams, nil
}

func buildListResult(rows []models.Order, next *pagination.Cursor) *ListResult {
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}
}
