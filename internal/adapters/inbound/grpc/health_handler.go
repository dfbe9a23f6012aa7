package grpc

import (
	"context"
	"time"

	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/architeacher/device-inventory/pkg/logger"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthHandler feeds the standard gRPC health service from storage pings.
// Both the overall status ("") and the named service track the same check.
type HealthHandler struct {
	server          *health.Server
	dbHealthChecker ports.DatabaseHealthChecker
	serviceName     string
	log             logger.Logger
}

func NewHealthHandler(dbHealthChecker ports.DatabaseHealthChecker, serviceName string, log logger.Logger) *HealthHandler {
	server := health.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	server.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthHandler{
		server:          server,
		dbHealthChecker: dbHealthChecker,
		serviceName:     serviceName,
		log:             log.Component("grpc_health"),
	}
}

func (h *HealthHandler) Server() healthpb.HealthServer {
	return h.server
}

// Refresh pings storage once and publishes the result.
func (h *HealthHandler) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING

	if err := h.dbHealthChecker.Ping(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		h.log.Warn().Err(err).Msg("storage health check failed")
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(h.serviceName, status)

	return status
}

// Watch refreshes the status every interval until ctx is done, then marks
// the service as not serving for good.
func (h *HealthHandler) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()

			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}
