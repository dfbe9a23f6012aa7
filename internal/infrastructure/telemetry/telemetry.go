package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/architeacher/device-inventory/internal/config"
	"github.com/architeacher/device-inventory/pkg/metrics"
	"github.com/architeacher/device-inventory/pkg/metrics/noop"
	"github.com/architeacher/device-inventory/pkg/metrics/otelmetrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
	traceNoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	exporterTypeGRPC   = "grpc"
	exporterTypeStdOut = "stdout"
)

type ShutdownFunc func(ctx context.Context) error

// NewResource describes this service instance for traces and metrics.
func NewResource(ctx context.Context, appConfig config.App) (*resource.Resource, error) {
	hostName, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get host name: %w", err)
	}

	return resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(appConfig.ServiceName),
			semconv.ServiceVersion(appConfig.ServiceVersion),
			attribute.String("env", appConfig.Env.Name),
			attribute.String("host", hostName),
			attribute.String("commit_sha", appConfig.CommitSHA),
		),
	)
}

// NewTracerProvider builds an SDK tracer provider and installs it globally.
func NewTracerProvider(
	ctx context.Context,
	res *resource.Resource,
	cfg config.Telemetry,
) (trace.TracerProvider, ShutdownFunc, error) {
	exporter, err := createExporter(ctx, cfg, os.Stdout)
	if err != nil {
		return nil, nil, err
	}

	sampler := sdktrace.TraceIDRatioBased(cfg.Traces.SamplerRatio)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Shutdown, nil
}

func NewNoopTracerProvider() trace.TracerProvider {
	return traceNoop.NewTracerProvider()
}

// NewMetricsClient returns an OTel-backed client when metrics are enabled.
func NewMetricsClient(res *resource.Resource, cfg config.Metrics) metrics.Client {
	if !cfg.Enabled {
		return noop.NewMetricsClient()
	}

	return otelmetrics.NewClient(res)
}

func createExporter(ctx context.Context, cfg config.Telemetry, stdout io.Writer) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.ExporterType) {
	case exporterTypeGRPC:
		exporter, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC exporter: %w", err)
		}

		return exporter, nil

	case exporterTypeStdOut:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(stdout), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create StdOut exporter: %w", err)
		}

		return exporter, nil

	default:
		return nil, fmt.Errorf("unsupported exporter type %q", cfg.ExporterType)
	}
}
