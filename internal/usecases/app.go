package usecases

import (
	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/architeacher/device-inventory/internal/usecases/commands"
	"github.com/architeacher/device-inventory/internal/usecases/queries"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/architeacher/device-inventory/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreateDevice commands.CreateDeviceCommandHandler
		UpdateDevice commands.UpdateDeviceCommandHandler
		DeleteDevice commands.DeleteDeviceCommandHandler
	}

	Queries struct {
		GetDevice         queries.GetDeviceQueryHandler
		ListDevices       queries.ListDevicesQueryHandler
		FetchLiveness     queries.FetchLivenessQueryHandler
		FetchReadiness    queries.FetchReadinessQueryHandler
		FetchHealthReport queries.FetchHealthReportQueryHandler
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}
)

func NewApplication(
	devicesSvc ports.DevicesService,
	dbHealthChecker ports.DatabaseHealthChecker,
	storageName string,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) *Application {
	return &Application{
		Commands: Commands{
			CreateDevice: commands.NewCreateDeviceCommandHandler(devicesSvc, log, metricsClient, tracerProvider),
			UpdateDevice: commands.NewUpdateDeviceCommandHandler(devicesSvc, log, metricsClient, tracerProvider),
			DeleteDevice: commands.NewDeleteDeviceCommandHandler(devicesSvc, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			GetDevice:         queries.NewGetDeviceQueryHandler(devicesSvc, log, metricsClient, tracerProvider),
			ListDevices:       queries.NewListDevicesQueryHandler(devicesSvc, log, metricsClient, tracerProvider),
			FetchLiveness:     queries.NewFetchLivenessQueryHandler(log, metricsClient, tracerProvider),
			FetchReadiness:    queries.NewFetchReadinessQueryHandler(dbHealthChecker, log, metricsClient, tracerProvider),
			FetchHealthReport: queries.NewFetchHealthReportQueryHandler(dbHealthChecker, storageName, log, metricsClient, tracerProvider),
		},
	}
}
