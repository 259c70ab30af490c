package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestOrderMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)
	m.ObservePlaced(4, 250*time.Millisecond)
	m.ObservePlaced(2.5, 100*time.Millisecond)
	m.ObserveFailure("INSUFFICIENT_STOCK", 50*time.Millisecond)
	m.ObserveFailure("", time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	placed := findMetricFamily(mfs, "agrogas_orders_placed_total")
	require.NotNil(t, placed)
	require.Equal(t, 2.0, placed.GetMetric()[0].GetCounter().GetValue())

	sold := findMetricFamily(mfs, "agrogas_order_kg_sold_total")
	require.NotNil(t, sold)
	require.Equal(t, 6.5, sold.GetMetric()[0].GetCounter().GetValue())

	got, err := fetchCounterValue(mfs, "agrogas_order_failures_total", "code", "INSUFFICIENT_STOCK")
	require.NoError(t, err)
	require.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "agrogas_order_failures_total", "code", "unknown")
	require.NoError(t, err)
	require.Equal(t, 1.0, got)

	sum, err := fetchHistogramSum(mfs, "agrogas_place_order_duration_seconds", "outcome", "success")
	require.NoError(t, err)
	require.InDelta(t, 0.35, sum, 1e-9)
}

func TestNilRegistererIsNoop(t *testing.T) {
	var nilMetrics *OrderMetrics
	nilMetrics.ObservePlaced(1, time.Second)
	nilMetrics.ObserveFailure("X", time.Second)

	NewOrderMetrics(nil).ObservePlaced(1, time.Second)
	NewHTTPMetrics(nil).Observe(http.MethodGet, "/", 200, time.Second)
}

func TestHTTPMetricsLabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodPost, "/api/v1/orders", http.StatusCreated, 10*time.Millisecond)
	m.Observe(http.MethodPost, "/api/v1/orders", http.StatusConflict, 10*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "agrogas_http_requests_total", "status", "409")
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
