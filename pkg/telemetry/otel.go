package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer and meter name used by every component
const InstrumentationName = "github.com/itsneelabh/shopeasy"

// Exporter names accepted by Config.Exporter
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config controls telemetry setup
type Config struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	ServiceName string  `json:"service_name" yaml:"service_name"`
	Exporter    string  `json:"exporter" yaml:"exporter"`
	Endpoint    string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	SampleRatio float64 `json:"sample_ratio" yaml:"sample_ratio"`
}

// Provider owns the tracer and meter providers for one storefront instance
type Provider struct {
	TraceProvider *sdktrace.TracerProvider
	MeterProvider *sdkmetric.MeterProvider
	Tracer        trace.Tracer
	Meter         metric.Meter
	Metrics       *Metrics
}

type setupOptions struct {
	traceWriter  io.Writer
	metricReader sdkmetric.Reader
	setGlobal    bool
}

// SetupOption customizes Setup
type SetupOption func(*setupOptions)

// WithTraceWriter sends stdout-exporter spans to w
func WithTraceWriter(w io.Writer) SetupOption {
	return func(o *setupOptions) {
		o.traceWriter = w
	}
}

// WithMetricReader attaches a reader to the meter provider
func WithMetricReader(r sdkmetric.Reader) SetupOption {
	return func(o *setupOptions) {
		o.metricReader = r
	}
}

// WithGlobal installs the providers and the W3C propagator globally
func WithGlobal() SetupOption {
	return func(o *setupOptions) {
		o.setGlobal = true
	}
}

// Setup builds tracer and meter providers from cfg. A disabled config, or
// OTEL_SDK_DISABLED=true, yields no-op instruments.
func Setup(ctx context.Context, cfg Config, opts ...SetupOption) (*Provider, error) {
	o := &setupOptions{traceWriter: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	if !cfg.Enabled || os.Getenv("OTEL_SDK_DISABLED") == "true" {
		return noopProvider()
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
		if serviceName == "" {
			serviceName = "shopeasy"
		}
	}

	res, err := createResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTEL resource: %w", err)
	}

	traceProvider, err := setupTraceProvider(ctx, cfg, res, o.traceWriter)
	if err != nil {
		return nil, fmt.Errorf("failed to setup trace provider: %w", err)
	}

	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if o.metricReader != nil {
		meterOpts = append(meterOpts, sdkmetric.WithReader(o.metricReader))
	}
	if strings.EqualFold(cfg.Exporter, ExporterOTLP) {
		reader, err := otlpMetricReader(ctx, otlpEndpoint(cfg))
		if err != nil {
			_ = traceProvider.Shutdown(ctx)
			return nil, fmt.Errorf("failed to setup metric exporter: %w", err)
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(reader))
	}
	meterProvider := sdkmetric.NewMeterProvider(meterOpts...)

	if o.setGlobal {
		otel.SetTracerProvider(traceProvider)
		otel.SetMeterProvider(meterProvider)
		otel.SetTextMapPropagator(propagation.TraceContext{})
	}

	meter := meterProvider.Meter(InstrumentationName)
	metrics, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Provider{
		TraceProvider: traceProvider,
		MeterProvider: meterProvider,
		Tracer:        traceProvider.Tracer(InstrumentationName),
		Meter:         meter,
		Metrics:       metrics,
	}, nil
}

func noopProvider() (*Provider, error) {
	meter := otel.GetMeterProvider().Meter(InstrumentationName)
	metrics, err := NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	return &Provider{
		Tracer:  otel.Tracer(InstrumentationName),
		Meter:   meter,
		Metrics: metrics,
	}, nil
}

// createResource describes this process to the telemetry backend
func createResource(serviceName string) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(getServiceVersion()),
		semconv.DeploymentEnvironmentKey.String(getEnvironment()),
		attribute.String("shopeasy.component", "storefront-core"),
	), nil
}

// setupTraceProvider configures the exporter named by cfg.Exporter
func setupTraceProvider(ctx context.Context, cfg Config, res *resource.Resource, w io.Writer) (*sdktrace.TracerProvider, error) {
	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	switch strings.ToLower(cfg.Exporter) {
	case "", ExporterNone:
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		), nil

	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		return sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		), nil

	case ExporterOTLP:
		endpoint := otlpEndpoint(cfg)
		if endpoint == "" {
			return nil, errors.New("otlp exporter requires an endpoint")
		}
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		return sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		), nil

	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}

// otlpMetricReader pushes metrics to the collector every 15 seconds
func otlpMetricReader(ctx context.Context, endpoint string) (sdkmetric.Reader, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second)), nil
}

func otlpEndpoint(cfg Config) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
}

// getServiceVersion gets the service version from environment or default
func getServiceVersion() string {
	if version := os.Getenv("OTEL_SERVICE_VERSION"); version != "" {
		return version
	}
	return "1.0.0"
}

// getEnvironment gets the deployment environment
func getEnvironment() string {
	if env := os.Getenv("DEPLOYMENT_ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

// Shutdown flushes and stops the providers
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TraceProvider != nil {
		if err := p.TraceProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TracerProvider returns the SDK provider, or the global one when telemetry
// is disabled.
func (p *Provider) TracerProvider() trace.TracerProvider {
	if p == nil || p.TraceProvider == nil {
		return otel.GetTracerProvider()
	}
	return p.TraceProvider
}
