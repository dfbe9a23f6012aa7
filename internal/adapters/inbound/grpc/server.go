package grpc

import (
	"github.com/architeacher/device-inventory/internal/config"
	"github.com/architeacher/device-inventory/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type ServerConfig struct {
	Health         *HealthHandler
	Logger         logger.Logger
	TracerProvider trace.TracerProvider
	Config         *config.ServiceConfig
}

// NewServer builds the gRPC server that exposes the health service.
func NewServer(cfg ServerConfig) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelgrpc.WithTracerProvider(cfg.TracerProvider))),
		grpc.ChainUnaryInterceptor(
			ContextExtractorInterceptor(),
			AccessLogInterceptor(cfg.Logger, cfg.Config.Logging.AccessLog),
		),
	)

	healthpb.RegisterHealthServer(server, cfg.Health.Server())

	if cfg.Config.HealthServer.Reflection {
		reflection.Register(server)
		cfg.Logger.Info().Msg("gRPC reflection enabled")
	}

	return server
}
