// Package decorator wraps CQRS handlers with logging, metrics and tracing.
// Logging is the outermost layer and tracing the innermost.
package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/architeacher/device-inventory/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Command any
	Query   any
	Result  any

	CommandHandler[C Command, R any] interface {
		Handle(context.Context, C) (R, error)
	}

	QueryHandler[Q Query, R Result] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}
)

func ApplyCommandDecorators[C Command, R any](
	handler CommandHandler[C, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CommandHandler[C, R] {
	traced := commandTracingDecorator[C, R]{base: handler, tracerProvider: tracerProvider}
	measured := commandMetricsDecorator[C, R]{base: traced, client: metricsClient}

	return commandLoggingDecorator[C, R]{base: measured, logger: log}
}

func ApplyQueryDecorators[Q Query, R Result](
	handler QueryHandler[Q, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) QueryHandler[Q, R] {
	traced := queryTracingDecorator[Q, R]{base: handler, tracerProvider: tracerProvider}
	measured := queryMetricsDecorator[Q, R]{base: traced, client: metricsClient}

	return queryLoggingDecorator[Q, R]{base: measured, logger: log}
}

// generateActionName turns a command or query value into its bare type name,
// e.g. commands.CreateDeviceCommand -> CreateDeviceCommand.
func generateActionName(v any) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", v), "*")

	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}

	return name
}
