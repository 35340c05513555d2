package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/itsneelabh/shopeasy"
	"github.com/itsneelabh/shopeasy/pkg/logger"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

// headerRecorder is a catalog API that remembers request headers
type headerRecorder struct {
	mu      sync.Mutex
	headers []http.Header
}

func (h *headerRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.headers = append(h.headers, r.Header.Clone())
	h.mu.Unlock()
	_ = json.NewEncoder(w).Encode([]map[string]interface{}{
		{"id": 1, "title": "Backpack", "price": 109.95, "category": "men's clothing", "image": "https://img/1.jpg"},
	})
}

func (h *headerRecorder) last() http.Header {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.headers[len(h.headers)-1]
}

func TestStorefrontTracing(t *testing.T) {
	api := &headerRecorder{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	var spans bytes.Buffer
	reader := sdkmetric.NewManualReader()

	cfg := shopeasy.DefaultConfig()
	cfg.Catalog.BaseURL = srv.URL
	cfg.Catalog.RateLimit = 0
	cfg.Telemetry = telemetry.Config{
		Enabled:     true,
		ServiceName: "shopeasy-test",
		Exporter:    telemetry.ExporterStdout,
		SampleRatio: 1,
	}

	ctx := context.Background()
	sf, err := shopeasy.New(ctx, cfg,
		shopeasy.WithMemory(memory.NewInMemoryStore()),
		shopeasy.WithLogger(logger.NewNopLogger()),
		shopeasy.WithTelemetryOptions(
			telemetry.WithTraceWriter(&spans),
			telemetry.WithMetricReader(reader),
		),
	)
	require.NoError(t, err)

	ctx = telemetry.WithCorrelationID(ctx)
	res, err := sf.Products(ctx, false)
	require.NoError(t, err)
	require.Len(t, res.Value, 1)

	_, err = sf.AddToCart(ctx, res.Value[0], 1, nil)
	require.NoError(t, err)

	// correlation and W3C trace context reach the catalog API
	h := api.last()
	assert.Equal(t, telemetry.GetCorrelationID(ctx), h.Get(telemetry.HeaderCorrelationID))
	assert.NotEmpty(t, h.Get(telemetry.HeaderRequestID))
	assert.NotEmpty(t, h.Get("Traceparent"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["catalog_fetch_total"])
	assert.True(t, names["catalog_fetch_duration_seconds"])
	assert.True(t, names["cart_mutations_total"])

	require.NoError(t, sf.Close(ctx))
	out := spans.String()
	assert.Contains(t, out, `"Name": "catalog.products"`)
	assert.Contains(t, out, "shopeasy-test")
	assert.Contains(t, out, "correlation.id")
}
