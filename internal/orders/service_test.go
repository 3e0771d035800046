package orders

import (
	"context"
	"testing"

	"github.com/emekaobi/freshbasket-backend/internal/notifications"
	"github.com/emekaobi/freshbasket-backend/pkg/db/models"
	"github.com/emekaobi/freshbasket-backend/pkg/enums"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	paginationpkg "github.com/emekaobi/freshbasket-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	orders         map[uuid.UUID]*models.Order
	updatedStatus  map[uuid.UUID]enums.OrderStatus
	listByUserFn   func(ctx context.Context, userID string, params ListParams) ([]models.Order, *paginationpkg.Cursor, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

func newFakeRepository(orders ...*models.Order) *fakeRepository {
	repo := &fakeRepository{
		orders:        map[uuid.UUID]*models.Order{},
		updatedStatus: map[uuid.UUID]enums.OrderStatus{},
	}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeRepository) FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.PaymentReference == reference {
			clone := *order
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID string, params ListParams) ([]models.Order, *paginationpkg.Cursor, error) {
	if f.listByUserFn != nil {
		return f.listByUserFn(ctx, userID, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) List(ctx context.Context, params ListParams) ([]models.Order, *paginationpkg.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, status)
	}
	if _, ok := f.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.updatedStatus[id] = status
	return nil
}

type fakeNotifier struct {
	messages []notifications.Message
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, msg notifications.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func TestService_GetForUser(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: "user-7", Status: enums.OrderStatusAwaitingConfirmation}
	repo := newFakeRepository(order)
	svc, err := NewService(repo, nil, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	got, err := svc.GetForUser(context.Background(), "user-7", order.ID)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("unexpected order %s", got.ID)
	}
}

func TestService_GetForUserHidesOtherUsers(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: "user-7"}
	svc, _ := NewService(newFakeRepository(order), nil, nil)

	_, err := svc.GetForUser(context.Background(), "user-8", order.ID)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_GetForUserMissing(t *testing.T) {
	svc, _ := NewService(newFakeRepository(), nil, nil)

	_, err := svc.GetForUser(context.Background(), "user-7", uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_ListForUser(t *testing.T) {
	next := &paginationpkg.Cursor{ID: uuid.New()}
	repo := newFakeRepository()
	repo.listByUserFn = func(ctx context.Context, userID string, params ListParams) ([]models.Order, *paginationpkg.Cursor, error) {
		if userID != "user-7" {
			t.Fatalf("unexpected user id %s", userID)
		}
		return []models.Order{{ID: uuid.New()}}, next, nil
	}
	svc, _ := NewService(repo, nil, nil)

	result, err := svc.ListForUser(context.Background(), "user-7", ListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 order, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected next cursor")
	}
}

func TestService_ListForUserInvalidCursor(t *testing.T) {
	svc, _ := NewService(newFakeRepository(), nil, nil)

	_, err := svc.ListForUser(context.Background(), "user-7", ListQuery{Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_AdminUpdateStatus(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: "user-7", Status: enums.OrderStatusAwaitingConfirmation}
	repo := newFakeRepository(order)
	notifier := &fakeNotifier{}
	svc, _ := NewService(repo, notifier, nil)

	updated, err := svc.AdminUpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("unexpected update error: %v", err)
	}
	if updated.Status != enums.OrderStatusShipped {
		t.Fatalf("unexpected status %s", updated.Status)
	}
	if repo.updatedStatus[order.ID] != enums.OrderStatusShipped {
		t.Fatalf("status not persisted, got %s", repo.updatedStatus[order.ID])
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.messages))
	}
	if notifier.messages[0].RecipientID != "user-7" {
		t.Fatalf("unexpected notification recipient %s", notifier.messages[0].RecipientID)
	}
}

func TestService_AdminUpdateStatusInvalidTransition(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: "user-7", Status: enums.OrderStatusDelivered}
	svc, _ := NewService(newFakeRepository(order), nil, nil)

	_, err := svc.AdminUpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err == nil {
		t.Fatal("expected state conflict error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_AdminUpdateStatusNotifierFailureDoesNotFail(t *testing.T) {
	order := &models.Order{ID: uuid.New(), UserID: "user-7", Status: enums.OrderStatusShipped}
	notifier := &fakeNotifier{err: pkgerrors.New(pkgerrors.CodeDependency, "down")}
	svc, _ := NewService(newFakeRepository(order), notifier, nil)

	updated, err := svc.AdminUpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("expected transition to succeed despite notifier error, got %v", err)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("unexpected status %s", updated.Status)
	}
}
