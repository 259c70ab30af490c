package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agrogas"

// OrderMetrics records ledger outcomes.
type OrderMetrics struct {
	placed   prometheus.Counter
	kgSold   prometheus.Counter
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewOrderMetrics registers the order ledger metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders committed by the ledger.",
	})
	kgSold := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_kg_sold_total",
		Help:      "Kilograms drawn from records by committed orders.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_failures_total",
		Help:      "Rejected or failed place-order attempts by error code.",
	}, []string{"code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "place_order_duration_seconds",
		Help:      "Latency of place-order attempts in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(placed, kgSold, failures, duration)
	return &OrderMetrics{
		placed:   placed,
		kgSold:   kgSold,
		failures: failures,
		duration: duration,
	}
}

// ObservePlaced records a committed order and the quantity it consumed.
func (m *OrderMetrics) ObservePlaced(totalKg float64, elapsed time.Duration) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
	if totalKg > 0 {
		m.kgSold.Add(totalKg)
	}
	m.duration.WithLabelValues("success").Observe(elapsed.Seconds())
}

// ObserveFailure records a failed attempt under its error code.
func (m *OrderMetrics) ObserveFailure(code string, elapsed time.Duration) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(code)).Inc()
	m.duration.WithLabelValues("failure").Observe(elapsed.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
