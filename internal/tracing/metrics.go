package tracing

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsCollector collects Prometheus-compatible metrics for the daemon
type MetricsCollector struct {
	meter metric.Meter

	// Counters
	requestsTotal metric.Int64Counter

	// Histograms
	requestDuration   metric.Float64Histogram
	selectionDuration metric.Float64Histogram
	reloadDuration    metric.Float64Histogram

	// Gauges (using observable gauges)
	activeRequests   int64
	activeRequestsMu sync.RWMutex
}

// NewMetricsCollector creates a new metrics collector using the given meter provider
func NewMetricsCollector(meterProvider metric.MeterProvider) (*MetricsCollector, error) {
	meter := meterProvider.Meter("switchboard")

	mc := &MetricsCollector{
		meter: meter,
	}

	var err error

	// Initialize counters
	mc.requestsTotal, err = meter.Int64Counter(
		"switchboard_http_requests_total",
		metric.WithDescription("Total number of HTTP requests handled"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	// Initialize histograms
	mc.requestDuration, err = meter.Float64Histogram(
		"switchboard_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mc.selectionDuration, err = meter.Float64Histogram(
		"switchboard_selection_duration_seconds",
		metric.WithDescription("Model selection duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	mc.reloadDuration, err = meter.Float64Histogram(
		"switchboard_reload_duration_seconds",
		metric.WithDescription("Catalog reload duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	// Initialize observable gauges
	_, err = meter.Int64ObservableGauge(
		"switchboard_active_requests",
		metric.WithDescription("Number of HTTP requests currently in flight"),
		metric.WithUnit("{request}"),
		metric.WithInt64Callback(func(ctx context.Context, observer metric.Int64Observer) error {
			mc.activeRequestsMu.RLock()
			count := mc.activeRequests
			mc.activeRequestsMu.RUnlock()
			observer.Observe(count)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return mc, nil
}

// RecordRequest records a completed HTTP request
func (mc *MetricsCollector) RecordRequest(ctx context.Context, endpoint, method string, status int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("endpoint", endpoint),
		attribute.String("method", method),
		attribute.Int("status", status),
	}

	mc.requestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	mc.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordSelection records a completed model selection.
// Source is the resolution source ("preference", "default") or "error"
// when selection failed.
func (mc *MetricsCollector) RecordSelection(ctx context.Context, source string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("source", source),
	}

	mc.selectionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordReload records a completed catalog reload.
// Trigger names what started the reload ("startup", "sighup", "api",
// "watcher"); outcome is "ok" or "error".
func (mc *MetricsCollector) RecordReload(ctx context.Context, trigger, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("trigger", trigger),
		attribute.String("outcome", outcome),
	}

	mc.reloadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncActiveRequests increments the in-flight request gauge
func (mc *MetricsCollector) IncActiveRequests() {
	mc.activeRequestsMu.Lock()
	mc.activeRequests++
	mc.activeRequestsMu.Unlock()
}

// DecActiveRequests decrements the in-flight request gauge
func (mc *MetricsCollector) DecActiveRequests() {
	mc.activeRequestsMu.Lock()
	if mc.activeRequests > 0 {
		mc.activeRequests--
	}
	mc.activeRequestsMu.Unlock()
}
