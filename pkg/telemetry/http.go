package telemetry

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// NewTracedHTTPClient returns a client whose requests carry spans and W3C
// trace context. A nil base uses http.DefaultTransport.
func NewTracedHTTPClient(base http.RoundTripper, tp trace.TracerProvider, timeout time.Duration) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	opts := []otelhttp.Option{
		otelhttp.WithPropagators(propagation.TraceContext{}),
	}
	if tp != nil {
		opts = append(opts, otelhttp.WithTracerProvider(tp))
	}
	return &http.Client{
		Transport: otelhttp.NewTransport(base, opts...),
		Timeout:   timeout,
	}
}
