// Package telemetry wires OpenTelemetry tracing and metrics into the
// storefront core.
//
// Setup builds a tracer provider with one of three exporters:
//   - none: spans are created but not exported
//   - stdout: pretty-printed spans to a writer, for local debugging
//   - otlp: OTLP over gRPC to Config.Endpoint or OTEL_EXPORTER_OTLP_ENDPOINT
//
// Outbound HTTP calls go through NewTracedHTTPClient, which wraps the
// transport with otelhttp. Correlation and request IDs travel in the
// context and are copied onto outbound headers by InjectCorrelationHeaders
// and onto log lines by EnrichLogFields.
//
// Environment:
//   - OTEL_SDK_DISABLED=true forces no-op instruments
//   - OTEL_SERVICE_NAME, OTEL_SERVICE_VERSION, DEPLOYMENT_ENVIRONMENT
package telemetry
