// Package telemetry wires doctags runs into OpenTelemetry.
//
// Nothing is exported unless DOCTAGS_OTEL_ENABLED=true. When enabled, spans
// and metrics go to OTEL_EXPORTER_OTLP_ENDPOINT over OTLP/HTTP, to stdout
// with DOCTAGS_OTEL_STDOUT=true, or to stdout alone when no endpoint is set.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Shutdown flushes whatever the periodic readers have not exported yet.
const metricInterval = 10 * time.Second

var shutdownFns []func(context.Context) error

// Enabled reports whether telemetry is active (DOCTAGS_OTEL_ENABLED=true).
func Enabled() bool {
	return os.Getenv("DOCTAGS_OTEL_ENABLED") == "true"
}

// exportTargets says where spans and metrics go.
type exportTargets struct {
	stdout         bool
	traceEndpoint  string
	metricEndpoint string
}

// targetsFromEnv reads the exporter settings. OTEL_EXPORTER_OTLP_METRICS_ENDPOINT
// overrides the shared endpoint for metrics only; with no endpoint at all the
// run falls back to stdout.
func targetsFromEnv() exportTargets {
	t := exportTargets{
		stdout:         os.Getenv("DOCTAGS_OTEL_STDOUT") == "true",
		traceEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		metricEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"),
	}
	if t.metricEndpoint == "" {
		t.metricEndpoint = t.traceEndpoint
	}
	if t.traceEndpoint == "" && t.metricEndpoint == "" {
		t.stdout = true
	}
	return t
}

// Init installs the global providers for one CLI invocation. With telemetry
// disabled it installs no-op providers.
func Init(ctx context.Context, serviceName, version string) error {
	if !Enabled() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
		resource.WithHost(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}

	targets := targetsFromEnv()
	tp, err := newTracerProvider(ctx, res, targets)
	if err != nil {
		return fmt.Errorf("telemetry: traces: %w", err)
	}
	mp, err := newMeterProvider(ctx, res, targets)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("telemetry: metrics: %w", err)
	}
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	shutdownFns = append(shutdownFns, tp.Shutdown, mp.Shutdown)
	return nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, t exportTargets) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if t.stdout {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	if t.traceEndpoint != "" {
		exp, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(t.traceEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp %s: %w", t.traceEndpoint, err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, t exportTargets) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if t.stdout {
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(metricInterval))))
	}
	if t.metricEndpoint != "" {
		exp, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(t.metricEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otlp %s: %w", t.metricEndpoint, err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(metricInterval))))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// Tracer returns a tracer for one doctags package.
func Tracer(scope string) trace.Tracer {
	return otel.Tracer(scope)
}

func meter(scope string) metric.Meter {
	return otel.Meter(scope)
}

// Shutdown flushes pending spans and metrics. Export errors are returned
// joined; callers at exit usually only log them.
func Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range shutdownFns {
		errs = append(errs, fn(ctx))
	}
	shutdownFns = nil
	return errors.Join(errs...)
}
