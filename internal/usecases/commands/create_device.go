package commands

import (
	"context"

	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/architeacher/device-inventory/pkg/decorator"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/architeacher/device-inventory/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	// CreateDeviceCommand carries only caller-controlled fields; identity and
	// creation time are always assigned by storage.
	CreateDeviceCommand struct {
		Name  string
		Brand string
		State model.State
	}

	CreateDeviceCommandHandler = decorator.CommandHandler[CreateDeviceCommand, *model.Device]

	createDeviceCommandHandler struct {
		devicesService ports.DevicesService
	}
)

func NewCreateDeviceCommandHandler(
	svc ports.DevicesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateDeviceCommandHandler {
	return decorator.ApplyCommandDecorators[CreateDeviceCommand, *model.Device](
		createDeviceCommandHandler{devicesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createDeviceCommandHandler) Handle(ctx context.Context, cmd CreateDeviceCommand) (*model.Device, error) {
	return h.devicesService.CreateDevice(ctx, model.DeviceDraft{
		Name:  cmd.Name,
		Brand: cmd.Brand,
		State: cmd.State,
	})
}
