package telemetry

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ContextKey type for context keys
type ContextKey string

const (
	// CorrelationIDKey is the context key for correlation ID
	CorrelationIDKey ContextKey = "correlation_id"
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"
	// UserIDKey is the context key for user ID
	UserIDKey ContextKey = "user_id"
)

const (
	// HeaderCorrelationID is the HTTP header for correlation ID
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is the HTTP header for request ID
	HeaderRequestID = "X-Request-ID"
	// HeaderUserID is the HTTP header for user ID
	HeaderUserID = "X-User-ID"
)

// WithCorrelationID returns ctx carrying a correlation ID, generating one
// when ctx has none. The CLI calls this once per command.
func WithCorrelationID(ctx context.Context) context.Context {
	if GetCorrelationID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, CorrelationIDKey, uuid.New().String())
}

// WithRequestID returns ctx carrying a fresh request ID
func WithRequestID(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	ctx = context.WithValue(ctx, RequestIDKey, id)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.String("request.id", id))
		if correlationID := GetCorrelationID(ctx); correlationID != "" {
			span.SetAttributes(attribute.String("correlation.id", correlationID))
		}
	}
	return ctx, id
}

// WithUserID returns ctx carrying the signed-in user's ID
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetCorrelationID retrieves correlation ID from context
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// InjectCorrelationHeaders injects correlation IDs into HTTP headers
func InjectCorrelationHeaders(ctx context.Context, headers http.Header) {
	if correlationID := GetCorrelationID(ctx); correlationID != "" {
		headers.Set(HeaderCorrelationID, correlationID)
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		headers.Set(HeaderRequestID, requestID)
	}
	if userID := GetUserID(ctx); userID != "" {
		headers.Set(HeaderUserID, userID)
	}
}

// EnrichLogFields adds correlation IDs to log fields
func EnrichLogFields(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}

	if correlationID := GetCorrelationID(ctx); correlationID != "" {
		fields["correlation_id"] = correlationID
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	if userID := GetUserID(ctx); userID != "" {
		fields["user_id"] = userID
	}

	// Add trace context if available
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		spanCtx := span.SpanContext()
		fields["trace_id"] = spanCtx.TraceID().String()
		fields["span_id"] = spanCtx.SpanID().String()
	}

	return fields
}