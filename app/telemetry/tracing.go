// Package telemetry configures OpenTelemetry tracing and metrics for the
// oracle daemon: an OTLP/HTTP span exporter, a Prometheus-backed meter
// provider, and span helpers for executed oracle calls.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "tee-oracle"
	serviceVersion = "1.0.0"

	// AttributeCaller is the span attribute holding the authenticated caller
	AttributeCaller = "oracle.caller"
	// AttributeOp is the span attribute holding the operation name
	AttributeOp = "oracle.op"
)

// Config holds the configuration for telemetry
type Config struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Environment  string  `mapstructure:"environment"`

	// PrometheusEnabled exports otel instruments through the default
	// Prometheus registry served on /metrics.
	PrometheusEnabled bool `mapstructure:"prometheus_enabled"`
}

// DefaultConfig returns a disabled telemetry configuration
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		OTLPEndpoint:      "localhost:4318",
		SampleRate:        1.0,
		Environment:       "local",
		PrometheusEnabled: true,
	}
}

// Provider manages OpenTelemetry tracing and metrics
type Provider struct {
	tracerProvider *tracesdk.TracerProvider
	meterProvider  *metricsdk.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	config         Config
}

// NewProvider initializes tracing and metrics. A disabled config yields a
// provider whose tracer and meter are the global no-op implementations.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{config: cfg}, nil
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := &Provider{config: cfg}

	if err := provider.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.PrometheusEnabled {
		if err := provider.initMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return provider, nil
}

func validateConfig(cfg Config) error {
	if cfg.OTLPEndpoint == "" {
		return errors.New("otlp endpoint is required")
	}

	if _, err := url.Parse(cfg.OTLPEndpoint); err != nil {
		return fmt.Errorf("invalid otlp endpoint: %w", err)
	}

	if cfg.SampleRate < 0 || cfg.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	return resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
}

func (p *Provider) initTracing(res *resource.Resource) error {
	endpoint := strings.TrimPrefix(p.config.OTLPEndpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client := otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithURLPath("/v1/traces"),
	)

	exporter, err := otlptrace.New(context.Background(), client)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	sampler := tracesdk.ParentBased(
		tracesdk.TraceIDRatioBased(p.config.SampleRate),
	)

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter,
			tracesdk.WithMaxExportBatchSize(512),
			tracesdk.WithMaxQueueSize(2048),
			tracesdk.WithBatchTimeout(5*time.Second),
		),
		tracesdk.WithResource(res),
		tracesdk.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)

	p.tracerProvider = tp
	p.tracer = tp.Tracer(serviceName)

	return nil
}

func (p *Provider) initMetrics(res *resource.Resource) error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	mp := metricsdk.NewMeterProvider(
		metricsdk.WithResource(res),
		metricsdk.WithReader(exporter),
	)

	otel.SetMeterProvider(mp)

	p.meterProvider = mp
	p.meter = mp.Meter(serviceName)

	return nil
}

// Shutdown flushes and stops the providers
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error

	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}

	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Tracer returns the OpenTelemetry tracer
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return otel.Tracer(serviceName)
	}
	return p.tracer
}

// Meter returns the OpenTelemetry meter
func (p *Provider) Meter() metric.Meter {
	if p == nil || p.meter == nil {
		return otel.Meter(serviceName)
	}
	return p.meter
}

// StartCallSpan starts the span of one executed oracle operation
func StartCallSpan(ctx context.Context, tracer trace.Tracer, op, caller string) (context.Context, trace.Span) {
	return tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttributeOp, op),
			attribute.String(AttributeCaller, caller),
		),
	)
}

// RecordError records an error on a span
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddSpanAttributes adds attributes to a span
func AddSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// HealthCheck verifies that telemetry is properly initialized
func (p *Provider) HealthCheck() error {
	if !p.config.Enabled {
		return nil
	}

	if p.tracerProvider == nil || p.tracer == nil {
		return errors.New("tracer provider not initialized")
	}

	if p.config.PrometheusEnabled && (p.meterProvider == nil || p.meter == nil) {
		return errors.New("meter provider not initialized but Prometheus is enabled")
	}

	return nil
}
