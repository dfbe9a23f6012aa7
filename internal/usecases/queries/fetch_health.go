package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/device-inventory/internal/config"
	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/architeacher/device-inventory/pkg/decorator"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/architeacher/device-inventory/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type (
	FetchHealthReportQuery struct{}

	HealthResult struct {
		Status       string                            `json:"status"`
		Version      string                            `json:"version"`
		Commit       string                            `json:"commit"`
		Uptime       string                            `json:"uptime"`
		Dependencies map[string]ports.DependencyStatus `json:"dependencies"`
	}

	FetchHealthReportQueryHandler = decorator.QueryHandler[FetchHealthReportQuery, *HealthResult]

	fetchHealthReportQueryHandler struct {
		dbHealthChecker ports.DatabaseHealthChecker
		storageName     string
		startTime       time.Time
	}
)

func NewFetchHealthReportQueryHandler(
	dbHealthChecker ports.DatabaseHealthChecker,
	storageName string,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchHealthReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchHealthReportQuery, *HealthResult](
		fetchHealthReportQueryHandler{
			dbHealthChecker: dbHealthChecker,
			storageName:     storageName,
			startTime:       time.Now(),
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchHealthReportQueryHandler) Execute(ctx context.Context, _ FetchHealthReportQuery) (*HealthResult, error) {
	start := time.Now()
	dbErr := h.dbHealthChecker.Ping(ctx)
	latency := time.Since(start)

	dbStatus := ports.DependencyStatus{
		Healthy: dbErr == nil,
		Latency: fmt.Sprintf("%dms", latency.Milliseconds()),
	}

	overallStatus := StatusHealthy

	if dbErr != nil {
		dbStatus.Message = dbErr.Error()
		overallStatus = StatusUnhealthy
	}

	return &HealthResult{
		Status:       overallStatus,
		Version:      config.ServiceVersion,
		Commit:       config.CommitSHA,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Dependencies: map[string]ports.DependencyStatus{h.storageName: dbStatus},
	}, nil
}
