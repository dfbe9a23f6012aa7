//go:generate go tool github.com/maxbrunsfeld/counterfeiter/v6 -generate

package ports

//counterfeiter:generate -o ../mocks/device_repository.go . DeviceRepository

import (
	"context"

	"github.com/architeacher/device-inventory/internal/domain/model"
)

type (
	Inserter interface {
		// Insert stores a new device, assigning its ID and creation time.
		Insert(ctx context.Context, device *model.Device) (*model.Device, error)
	}

	Fetcher interface {
		// FetchByID retrieves a device by its ID.
		FetchByID(ctx context.Context, id model.DeviceID) (*model.Device, error)

		// FetchAll retrieves every stored device.
		FetchAll(ctx context.Context) ([]*model.Device, error)

		// FetchByField retrieves the devices whose field equals value exactly.
		FetchByField(ctx context.Context, field string, value any) ([]*model.Device, error)
	}

	Saver interface {
		// Save writes the full device, replacing the stored record with the same ID.
		Save(ctx context.Context, device *model.Device) (*model.Device, error)
	}

	Deleter interface {
		// DeleteByID removes a device by its ID.
		DeleteByID(ctx context.Context, id model.DeviceID) error
	}

	// DeviceRepository defines the persistence gateway for devices.
	DeviceRepository interface {
		Inserter
		Fetcher
		Saver
		Deleter
		DatabaseHealthChecker
	}
)
