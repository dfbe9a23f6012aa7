package queries

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
	// ListDevicesQuery narrows the listing to one attribute when set. Brand
	// takes precedence over State; an empty query lists everything.
	ListDevicesQuery struct {
		Brand model.Optional[string]
		State model.Optional[string]
	}

	ListDevicesQueryHandler = decorator.QueryHandler[ListDevicesQuery, []*model.Device]

	listDevicesQueryHandler struct {
		devicesService ports.DevicesService
	}
)

func NewListDevicesQueryHandler(
	svc ports.DevicesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListDevicesQueryHandler {
	return decorator.ApplyQueryDecorators[ListDevicesQuery, []*model.Device](
		listDevicesQueryHandler{devicesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listDevicesQueryHandler) Execute(ctx context.Context, query ListDevicesQuery) ([]*model.Device, error) {
	if brand, ok := query.Brand.Get(); ok {
		return h.devicesService.ListDevicesByBrand(ctx, brand)
	}

	if state, ok := query.State.Get(); ok {
		return h.devicesService.ListDevicesByState(ctx, state)
	}

	return h.devicesService.ListDevices(ctx)
}
