package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names
const (
	MetricCatalogFetches       = "catalog_fetch_total"
	MetricCatalogFetchDuration = "catalog_fetch_duration_seconds"
	MetricCartMutations        = "cart_mutations_total"
)

// Metrics holds the storefront instruments
type Metrics struct {
	catalogFetches       metric.Int64Counter
	catalogFetchDuration metric.Float64Histogram
	cartMutations        metric.Int64Counter
}

// NewMetrics registers the storefront instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	fetches, err := meter.Int64Counter(
		MetricCatalogFetches,
		metric.WithDescription("Catalog lookups by operation and source"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		MetricCatalogFetchDuration,
		metric.WithDescription("Catalog lookup duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	mutations, err := meter.Int64Counter(
		MetricCartMutations,
		metric.WithDescription("Cart mutations by operation and persistence outcome"),
	)
	if err != nil {
		return nil, err
	}
	return &Metrics{
		catalogFetches:       fetches,
		catalogFetchDuration: duration,
		cartMutations:        mutations,
	}, nil
}

// RecordCatalogFetch records one catalog lookup. source is where the value
// came from (cache, network, stale, fallback) or "error".
func (m *Metrics) RecordCatalogFetch(ctx context.Context, op, source string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("source", source),
	)
	m.catalogFetches.Add(ctx, 1, attrs)
	m.catalogFetchDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordCartMutation records one cart mutation
func (m *Metrics) RecordCartMutation(ctx context.Context, op string, persisted bool) {
	if m == nil {
		return
	}
	m.cartMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.Bool("persisted", persisted),
	))
}
