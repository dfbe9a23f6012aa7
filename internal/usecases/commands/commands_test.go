package commands_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/architeacher/device-inventory/internal/adapters/repos"
	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/internal/infrastructure/telemetry"
	"github.com/architeacher/device-inventory/internal/services"
	"github.com/architeacher/device-inventory/internal/usecases/commands"
	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/architeacher/device-inventory/pkg/metrics/noop"
	"github.com/stretchr/testify/require"
)

func newDevicesService() *services.DevicesService {
	return services.NewDevicesService(repos.NewMemoryRepository())
}

func TestCreateDeviceCommandHandler(t *testing.T) {
	t.Parallel()

	svc := newDevicesService()
	handler := commands.NewCreateDeviceCommandHandler(svc, logger.NewTestLogger(), noop.NewMetricsClient(), telemetry.NewNoopTracerProvider())

	device, err := handler.Handle(t.Context(), commands.CreateDeviceCommand{
		Name:  "Watch",
		Brand: "Garmin",
		State: model.StateInUse,
	})
	require.NoError(t, err)
	require.False(t, device.ID.IsZero())
	require.False(t, device.CreatedAt.IsZero())
	require.Equal(t, model.StateInUse, device.State)

	stored, err := svc.GetDevice(t.Context(), device.ID)
	require.NoError(t, err)
	require.Equal(t, device, stored)
}

func TestUpdateDeviceCommandHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		initial       model.State
		cmd           func(id model.DeviceID) commands.UpdateDeviceCommand
		expectedErr   error
		expectedName  string
		expectedState model.State
	}{
		{
			name:    "renames an available device",
			initial: model.StateAvailable,
			cmd: func(id model.DeviceID) commands.UpdateDeviceCommand {
				return commands.UpdateDeviceCommand{ID: id, Name: model.Some("Watch Pro")}
			},
			expectedName:  "Watch Pro",
			expectedState: model.StateAvailable,
		},
		{
			name:    "rejects renaming an in-use device",
			initial: model.StateInUse,
			cmd: func(id model.DeviceID) commands.UpdateDeviceCommand {
				return commands.UpdateDeviceCommand{ID: id, Name: model.Some("Watch Pro")}
			},
			expectedErr: model.ErrCannotUpdateInUseDevice,
		},
		{
			name:    "releases an in-use device",
			initial: model.StateInUse,
			cmd: func(id model.DeviceID) commands.UpdateDeviceCommand {
				return commands.UpdateDeviceCommand{ID: id, State: model.Some(model.StateAvailable)}
			},
			expectedName:  "Watch",
			expectedState: model.StateAvailable,
		},
		{
			name: "unknown device",
			cmd: func(model.DeviceID) commands.UpdateDeviceCommand {
				return commands.UpdateDeviceCommand{ID: model.NewDeviceID(), Name: model.Some("x")}
			},
			expectedErr: model.ErrDeviceNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newDevicesService()
			created, err := svc.CreateDevice(t.Context(), model.DeviceDraft{Name: "Watch", Brand: "Garmin", State: tc.initial})
			require.NoError(t, err)

			handler := commands.NewUpdateDeviceCommandHandler(svc, logger.NewTestLogger(), noop.NewMetricsClient(), telemetry.NewNoopTracerProvider())

			updated, err := handler.Handle(t.Context(), tc.cmd(created.ID))
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				require.Nil(t, updated)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expectedName, updated.Name)
			require.Equal(t, "Garmin", updated.Brand)
			require.Equal(t, tc.expectedState, updated.State)
		})
	}
}

func TestUpdateDeviceCommandHandler_LogsPatchValues(t *testing.T) {
	t.Parallel()

	svc := newDevicesService()
	created, err := svc.CreateDevice(t.Context(), model.DeviceDraft{Name: "Watch", Brand: "Garmin"})
	require.NoError(t, err)

	var buf bytes.Buffer

	handler := commands.NewUpdateDeviceCommandHandler(svc, logger.NewBufferedTestLogger(&buf), noop.NewMetricsClient(), telemetry.NewNoopTracerProvider())

	_, err = handler.Handle(t.Context(), commands.UpdateDeviceCommand{ID: created.ID, Name: model.Some("Watch Pro")})
	require.NoError(t, err)

	var body string

	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))

		if value, ok := entry["command_body"].(string); ok {
			body = value

			break
		}
	}

	require.NotEmpty(t, body)
	require.Contains(t, body, "ID:"+created.ID.String())
	require.Contains(t, body, "Name:Watch Pro")
	require.Contains(t, body, "Brand:<unset>")
	require.Contains(t, body, "State:<unset>")
}

func TestDeleteDeviceCommandHandler(t *testing.T) {
	t.Parallel()

	svc := newDevicesService()
	handler := commands.NewDeleteDeviceCommandHandler(svc, logger.NewTestLogger(), noop.NewMetricsClient(), telemetry.NewNoopTracerProvider())

	inUse, err := svc.CreateDevice(t.Context(), model.DeviceDraft{Name: "Watch", Brand: "Garmin", State: model.StateInUse})
	require.NoError(t, err)

	inactive, err := svc.CreateDevice(t.Context(), model.DeviceDraft{Name: "Phone", Brand: "Apple", State: model.StateInactive})
	require.NoError(t, err)

	_, err = handler.Handle(t.Context(), commands.DeleteDeviceCommand{ID: inUse.ID})
	require.ErrorIs(t, err, model.ErrCannotDeleteInUseDevice)

	_, err = handler.Handle(t.Context(), commands.DeleteDeviceCommand{ID: inactive.ID})
	require.NoError(t, err)

	_, err = svc.GetDevice(t.Context(), inactive.ID)
	require.True(t, errors.Is(err, model.ErrDeviceNotFound))

	_, err = handler.Handle(context.Background(), commands.DeleteDeviceCommand{ID: inactive.ID})
	require.ErrorIs(t, err, model.ErrDeviceNotFound)
}
