package runtime

import (
	"context"
	"fmt"
	"net/http"

	inboundgrpc "github.com/architeacher/device-inventory/internal/adapters/inbound/grpc"
	"github.com/architeacher/device-inventory/internal/config"
	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/architeacher/device-inventory/internal/usecases"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/architeacher/device-inventory/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/sdk/resource"
	otelTrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		grpcServer     *grpc.Server
		healthHandler  *inboundgrpc.HealthHandler
		resource       *resource.Resource
		tracerProvider otelTrace.TracerProvider
		metricsClient  metrics.Client
		logger         logger.Logger
		dbPool         *pgxpool.Pool
	}

	repositories struct {
		secretsRepo     ports.SecretsRepository
		deviceRepo      ports.DeviceRepository
		dbHealthChecker ports.DatabaseHealthChecker
	}

	dependencies struct {
		config *config.ServiceConfig

		infra infrastructureDep

		repos repositories

		devicesService ports.DevicesService

		app *usecases.Application

		cleanupFuncs map[string]func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		cleanupFuncs: make(map[string]func(ctx context.Context) error),
	}

	allOpts := append(defaultOptions(ctx), opts...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			deps.releaseOnFailure(ctx)

			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

// releaseOnFailure runs the cleanups registered so far when building stops
// half way, so a failed start does not leak pools or exporters.
func (d *dependencies) releaseOnFailure(ctx context.Context) {
	for _, cleanupFn := range d.cleanupFuncs {
		_ = cleanupFn(ctx)
	}
}
