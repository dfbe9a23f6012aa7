//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

//counterfeiter:generate -o ../mocks/devices_service.go . DevicesService

import (
	"context"

	"github.com/architeacher/device-inventory/internal/domain/model"
)

// DevicesService defines the device lifecycle operations.
type DevicesService interface {
	// CreateDevice persists a new device built from the draft.
	CreateDevice(ctx context.Context, draft model.DeviceDraft) (*model.Device, error)

	// GetDevice retrieves a device by its ID.
	GetDevice(ctx context.Context, id model.DeviceID) (*model.Device, error)

	// ListDevices retrieves all devices.
	ListDevices(ctx context.Context) ([]*model.Device, error)

	// ListDevicesByBrand retrieves the devices of exactly the given brand.
	ListDevicesByBrand(ctx context.Context, brand string) ([]*model.Device, error)

	// ListDevicesByState parses rawState and retrieves the devices in that state.
	ListDevicesByState(ctx context.Context, rawState string) ([]*model.Device, error)

	// UpdateDevice applies a partial update.
	UpdateDevice(ctx context.Context, patch model.DevicePatch) (*model.Device, error)

	// DeleteDevice deletes a device by its ID.
	DeleteDevice(ctx context.Context, id model.DeviceID) error
}
