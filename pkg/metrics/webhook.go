package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records outcomes of gateway webhook processing.
type WebhookMetrics struct {
	processed     *prometheus.CounterVec
	duplicates    prometheus.Counter
	ordersCreated prometheus.Counter
	stockConflict prometheus.Counter
	duration      prometheus.Histogram
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_processed_total",
		Help: "Gateway webhook events by outcome.",
	}, []string{"outcome"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_duplicate_total",
		Help: "Webhook deliveries acknowledged as already processed.",
	})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_orders_created_total",
		Help: "Orders materialized from gateway charges.",
	})
	stockConflict := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_stock_conflicts_total",
		Help: "Charges rejected for missing or insufficient stock.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "webhook_processing_seconds",
		Help:    "Duration of webhook event processing in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(processed, duplicates, ordersCreated, stockConflict, duration)
	return &WebhookMetrics{
		processed:     processed,
		duplicates:    duplicates,
		ordersCreated: ordersCreated,
		stockConflict: stockConflict,
		duration:      duration,
	}
}

// IncProcessed increments the outcome counter ("ok", "rejected", "failed").
func (m *WebhookMetrics) IncProcessed(outcome string) {
	if m == nil || m.processed == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.processed.WithLabelValues(outcome).Inc()
}

// IncDuplicate counts a redelivered event acknowledged without work.
func (m *WebhookMetrics) IncDuplicate() {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.Inc()
}

// IncOrderCreated counts a materialized order.
func (m *WebhookMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncStockConflict counts a charge that could not be fulfilled from stock.
func (m *WebhookMetrics) IncStockConflict() {
	if m == nil || m.stockConflict == nil {
		return
	}
	m.stockConflict.Inc()
}

// ObserveDuration records end-to-end processing time for one delivery.
func (m *WebhookMetrics) ObserveDuration(d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
