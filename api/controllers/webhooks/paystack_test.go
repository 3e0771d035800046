package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	paystackwebhook "github.com/emekaobi/freshbasket-backend/internal/webhooks/paystack"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"
	"github.com/emekaobi/freshbasket-backend/pkg/metrics"
)

const testSecret = "sk_test_secret"

func signPayload(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func chargePayload(t *testing.T, reference string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"event": "charge.success",
		"data": map[string]any{
			"reference": reference,
			"amount":    250000,
			"currency":  "NGN",
			"customer":  map[string]string{"email": "shopper@example.com"},
			"metadata": map[string]any{
				"user_id":     "user-1",
				"order_type":  "cart",
				"order_items": `[{"id":"p1","name":"Garri","qty":1,"price":"2500.00"}]`,
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

func newHandler(svc PaystackWebhookService) (http.HandlerFunc, *inMemoryStore) {
	return newHandlerWith(svc, nil, nil)
}

func newHandlerWith(svc PaystackWebhookService, m *metrics.WebhookMetrics, logg *logger.Logger) (http.HandlerFunc, *inMemoryStore) {
	store := newInMemoryStore()
	guard, _ := paystackwebhook.NewIdempotencyGuard(store, time.Minute, "paystack-webhook")
	return PaystackWebhook(svc, staticSecret(testSecret), guard, m, logg), store
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func post(handler http.HandlerFunc, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("X-Paystack-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPaystackWebhook_SuccessAndDuplicate(t *testing.T) {
	service := &fakeWebhookService{}
	handler, _ := newHandler(service)

	payload := chargePayload(t, "ref-001")
	rec := post(handler, payload, signPayload(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}

	replay := post(handler, payload, signPayload(payload))
	if replay.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", replay.Code)
	}
	if service.calls != 1 {
		t.Fatalf("expected duplicate short-circuited, call count %d", service.calls)
	}
}

func TestPaystackWebhook_MissingSignature(t *testing.T) {
	service := &fakeWebhookService{}
	handler, _ := newHandler(service)

	payload := chargePayload(t, "ref-002")
	rec := post(handler, payload, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatal("service should not run without a signature")
	}
}

func TestPaystackWebhook_InvalidSignature(t *testing.T) {
	service := &fakeWebhookService{}
	handler, _ := newHandler(service)

	payload := chargePayload(t, "ref-003")
	rec := post(handler, payload, "deadbeef")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatal("service should not run on signature mismatch")
	}
}

func TestPaystackWebhook_IgnoresOtherEvents(t *testing.T) {
	service := &fakeWebhookService{}
	handler, _ := newHandler(service)

	payload, err := json.Marshal(map[string]any{
		"event": "transfer.success",
		"data":  map[string]any{"reference": "ref-004"},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	rec := post(handler, payload, signPayload(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatal("non-charge events should not reach the service")
	}
}

func TestPaystackWebhook_RetryableFailureClearsMark(t *testing.T) {
	service := &fakeWebhookService{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	handler, store := newHandler(service)

	payload := chargePayload(t, "ref-005")
	rec := post(handler, payload, signPayload(payload))
	if rec.Code < 500 {
		t.Fatalf("expected 5xx for retryable failure, got %d", rec.Code)
	}
	if len(store.data) != 0 {
		t.Fatal("expected idempotency mark cleared for retry")
	}

	// The gateway retry should reach the service again.
	service.err = nil
	retry := post(handler, payload, signPayload(payload))
	if retry.Code != http.StatusOK {
		t.Fatalf("expected 200 on retry, got %d", retry.Code)
	}
	if service.calls != 2 {
		t.Fatalf("expected retry processed, call count %d", service.calls)
	}
}

func TestPaystackWebhook_UnfulfillableChargeIsAcked(t *testing.T) {
	service := &fakeWebhookService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")}
	handler, store := newHandler(service)

	payload := chargePayload(t, "ref-006")
	rec := post(handler, payload, signPayload(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack for unfulfillable charge, got %d", rec.Code)
	}
	if len(store.data) != 1 {
		t.Fatal("expected idempotency mark kept")
	}

	replay := post(handler, payload, signPayload(payload))
	if replay.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", replay.Code)
	}
	if service.calls != 1 {
		t.Fatalf("expected replay not reprocessed, call count %d", service.calls)
	}
}

func TestPaystackWebhook_StockConflictIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWebhookMetrics(reg)
	service := &fakeWebhookService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")}
	handler, _ := newHandlerWith(service, m, nil)

	payload := chargePayload(t, "ref-007")
	rec := post(handler, payload, signPayload(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack, got %d", rec.Code)
	}
	if got := counterValue(t, reg, "webhook_stock_conflicts_total"); got != 1 {
		t.Fatalf("expected 1 stock conflict counted, got %v", got)
	}
	if got := counterValue(t, reg, "webhook_events_processed_total"); got != 1 {
		t.Fatalf("expected 1 processed event counted, got %v", got)
	}
}

func TestPaystackWebhook_MalformedBodyLoggedAndAcked(t *testing.T) {
	var logs bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &logs})
	service := &fakeWebhookService{}
	handler, _ := newHandlerWith(service, nil, logg)

	payload := []byte(`{"event": "charge.success", "data":`)
	rec := post(handler, payload, signPayload(payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatal("unparsable payload should not reach the service")
	}
	if !strings.Contains(logs.String(), "payload_malformed") {
		t.Fatalf("expected decode failure logged, got %q", logs.String())
	}
}

type fakeWebhookService struct {
	calls int
	err   error
}

func (f *fakeWebhookService) HandleChargeSuccess(ctx context.Context, event *paystackwebhook.Event) (*paystackwebhook.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &paystackwebhook.Result{Outcome: paystackwebhook.OutcomeCreated}, nil
}

type staticSecret string

func (s staticSecret) SigningSecret() string {
	return string(s)
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{
		data: make(map[string]string),
	}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fb:idempotency:%s:%s", scope, id)
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
