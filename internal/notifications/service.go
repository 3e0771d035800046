package notifications

import (
	"context"
	"time"

	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Message is the input for creating a notification. Admin-wide
// notifications leave RecipientID empty.
type Message struct {
	Recipient   enums.NotificationRecipient
	RecipientID string
	Title       string
	Description string
	Href        *string
	Icon        *string
}

// Notifier is the narrow write surface other packages depend on.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Service defines notification create/list/read operations.
type Service interface {
	Notifier
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, recipient enums.NotificationRecipient, recipientID string, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipient enums.NotificationRecipient, recipientID string) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Recipient   enums.NotificationRecipient
	RecipientID string
	Limit       int
	Cursor      string
	UnreadOnly  bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Notify(ctx context.Context, msg Message) error {
	if !msg.Recipient.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification recipient")
	}
	if msg.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification title required")
	}
	if msg.Recipient == enums.NotificationRecipientUser && msg.RecipientID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user notification requires a recipient id")
	}

	notification := models.Notification{
		Recipient:   msg.Recipient,
		RecipientID: msg.RecipientID,
		Title:       msg.Title,
		Description: msg.Description,
		Href:        msg.Href,
		Icon:        msg.Icon,
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if !params.Recipient.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification recipient")
	}

	query := listNotificationsParams{
		Recipient:   params.Recipient,
		RecipientID: params.RecipientID,
		Limit:       params.Limit,
		UnreadOnly:  params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, recipient enums.NotificationRecipient, recipientID string, notificationID uuid.UUID) error {
	if !recipient.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid notification recipient")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, recipient, recipientID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipient enums.NotificationRecipient, recipientID string) (int64, error) {
	if !recipient.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification recipient")
	}

	count, err := s.repo.MarkAllRead(ctx, recipient, recipientID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
