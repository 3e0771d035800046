package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/emekaobi/freshbasket-backend/api/responses"
	paystackwebhook "github.com/emekaobi/freshbasket-backend/internal/webhooks/paystack"
	pkgerrors "github.com/emekaobi/freshbasket-backend/pkg/errors"
	"github.com/emekaobi/freshbasket-backend/pkg/logger"
	"github.com/emekaobi/freshbasket-backend/pkg/metrics"
	"github.com/emekaobi/freshbasket-backend/pkg/paystack"
)

const signatureHeader = "X-Paystack-Signature"

type PaystackWebhookService interface {
	HandleChargeSuccess(ctx context.Context, event *paystackwebhook.Event) (*paystackwebhook.Result, error)
}

type paystackWebhookGuard interface {
	CheckAndMark(ctx context.Context, reference string) (bool, error)
	Delete(ctx context.Context, reference string) error
}

type signingSecretSource interface {
	SigningSecret() string
}

// PaystackWebhook receives payment event deliveries. Paystack retries any
// non-2xx response, so unprocessable deliveries are acknowledged with 200
// and only transient failures surface as errors.
func PaystackWebhook(svc PaystackWebhookService, secrets signingSecretSource, guard paystackWebhookGuard, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if secrets == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "signing secret unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := strings.TrimSpace(r.Header.Get(signatureHeader))
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "signature missing"))
			return
		}
		if !paystack.VerifyWebhookSignature(payload, secrets.SigningSecret(), sigHeader) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "signature mismatch"))
			return
		}

		var event paystackwebhook.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			if m != nil {
				m.IncProcessed("malformed")
			}
			if logg != nil {
				logg.Error(ctx, "webhook.payload_malformed", err)
			}
			responses.WriteSuccess(w, map[string]string{"status": "ok"})
			return
		}

		if event.Event != paystackwebhook.EventChargeSuccess {
			if m != nil {
				m.IncProcessed("ignored")
			}
			responses.WriteSuccess(w, map[string]string{"status": "ok"})
			return
		}

		reference := strings.TrimSpace(event.Data.Reference)
		if reference == "" {
			if m != nil {
				m.IncProcessed("rejected")
			}
			responses.WriteSuccess(w, map[string]string{"status": "ok"})
			return
		}

		alreadySeen, err := guard.CheckAndMark(ctx, reference)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadySeen {
			if m != nil {
				m.IncProcessed("duplicate")
			}
			responses.WriteSuccess(w, map[string]string{"status": "ok"})
			return
		}

		result, err := svc.HandleChargeSuccess(ctx, &event)
		if err != nil {
			if pkgerrors.IsRetryable(err) {
				// Clear the mark so the gateway's retry gets another attempt.
				_ = guard.Delete(ctx, reference)
				responses.WriteError(ctx, logg, w, err)
				return
			}
			// Unprocessable delivery. Keep the mark and ack so the gateway
			// stops retrying a charge we can never fulfill.
			if m != nil {
				m.IncProcessed("rejected")
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
					m.IncStockConflict()
				}
			}
			if logg != nil {
				logg.Error(logg.WithPaymentRef(ctx, reference), "webhook.charge_rejected", err)
			}
			responses.WriteSuccess(w, map[string]string{"status": "ok"})
			return
		}

		if m != nil {
			m.IncProcessed(string(result.Outcome))
		}
		if logg != nil {
			logg.Info(logg.WithPaymentRef(ctx, reference), "webhook.charge_processed")
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
