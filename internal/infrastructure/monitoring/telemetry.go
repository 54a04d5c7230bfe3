// Package monitoring wires tracing and metrics: the OpenTelemetry providers,
// the planner's instruments and the Prometheus HTTP collector.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// Trace exporters.
const (
	ExporterOTLP   = "otlp"
	ExporterJaeger = "jaeger"
	ExporterNone   = "none"
)

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	TracingEnabled bool
	TraceExporter  string
	JaegerEndpoint string
	OTLPEndpoint   string
	SamplingRate   float64

	MetricsEnabled bool
	// Registerer receives the OpenTelemetry Prometheus exporter. Nil uses the
	// default registry.
	Registerer prometheus.Registerer
}

// TelemetryProvider owns the tracer and meter providers.
type TelemetryProvider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	logger         *zap.Logger
	config         TelemetryConfig
}

// NewTelemetryProvider creates the providers. Disabled signals fall back to
// no-op implementations so callers never need nil checks.
func NewTelemetryProvider(config TelemetryConfig, logger *zap.Logger) (*TelemetryProvider, error) {
	provider := &TelemetryProvider{
		logger: logger.Named("telemetry"),
		config: config,
		tracer: tracenoop.NewTracerProvider().Tracer(config.ServiceName),
		meter:  noop.NewMeterProvider().Meter(config.ServiceName),
	}

	res, err := provider.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if config.TracingEnabled {
		if err := provider.initializeTracing(res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if config.MetricsEnabled {
		if err := provider.initializeMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	provider.logger.Info("OpenTelemetry provider initialized",
		zap.String("service", config.ServiceName),
		zap.String("version", config.ServiceVersion),
		zap.String("environment", config.Environment),
		zap.Bool("tracing_enabled", config.TracingEnabled),
		zap.String("trace_exporter", config.TraceExporter),
		zap.Bool("metrics_enabled", config.MetricsEnabled),
	)

	return provider, nil
}

func (o *TelemetryProvider) createResource() (*resource.Resource, error) {
	return resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(o.config.ServiceName),
			semconv.ServiceVersion(o.config.ServiceVersion),
			semconv.DeploymentEnvironment(o.config.Environment),
			attribute.String("service.component", "planner"),
		),
		resource.WithProcess(),
		resource.WithHost(),
	)
}

func (o *TelemetryProvider) spanExporter() (sdktrace.SpanExporter, error) {
	switch o.config.TraceExporter {
	case ExporterJaeger:
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(o.config.JaegerEndpoint)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
		}
		o.logger.Info("Jaeger exporter configured", zap.String("endpoint", o.config.JaegerEndpoint))
		return exp, nil
	case ExporterOTLP:
		client := otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(o.config.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		exp, err := otlptrace.New(context.Background(), client)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		o.logger.Info("OTLP trace exporter configured", zap.String("endpoint", o.config.OTLPEndpoint))
		return exp, nil
	default:
		return nil, nil
	}
}

func (o *TelemetryProvider) initializeTracing(res *resource.Resource) error {
	exporter, err := o.spanExporter()
	if err != nil {
		return err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.config.SamplingRate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	} else {
		o.logger.Warn("No trace exporter configured, spans are sampled but not exported")
	}

	o.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(o.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	o.tracer = o.tracerProvider.Tracer(
		o.config.ServiceName,
		trace.WithInstrumentationVersion(o.config.ServiceVersion),
		trace.WithSchemaURL(semconv.SchemaURL),
	)
	return nil
}

func (o *TelemetryProvider) initializeMetrics(res *resource.Resource) error {
	var opts []otelprom.Option
	if o.config.Registerer != nil {
		opts = append(opts, otelprom.WithRegisterer(o.config.Registerer))
	}
	exporter, err := otelprom.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	o.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(o.meterProvider)

	o.meter = o.meterProvider.Meter(
		o.config.ServiceName,
		metric.WithInstrumentationVersion(o.config.ServiceVersion),
		metric.WithSchemaURL(semconv.SchemaURL),
	)
	return nil
}

// Tracer returns the configured tracer
func (o *TelemetryProvider) Tracer() trace.Tracer {
	return o.tracer
}

// Meter returns the configured meter
func (o *TelemetryProvider) Meter() metric.Meter {
	return o.meter
}

// InstrumentHandler wraps a handler with otelhttp server spans.
func (o *TelemetryProvider) InstrumentHandler(handler http.Handler, operation string) http.Handler {
	if o.tracerProvider == nil {
		return handler
	}
	opts := []otelhttp.Option{otelhttp.WithTracerProvider(o.tracerProvider)}
	if o.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(o.meterProvider))
	}
	return otelhttp.NewHandler(handler, operation, opts...)
}

// Shutdown flushes and stops both providers.
func (o *TelemetryProvider) Shutdown(ctx context.Context) error {
	var errs []error

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}

	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	o.logger.Info("OpenTelemetry provider shutdown completed")
	return nil
}
