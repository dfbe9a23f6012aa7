package handlers

import (
	"time"

	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/internal/usecases/commands"
)

type (
	// createDeviceRequest has no id or createdAt: both are assigned by
	// storage, so values a caller sends for them are discarded on decode.
	createDeviceRequest struct {
		Name  string  `json:"name"`
		Brand string  `json:"brand"`
		State *string `json:"state" validate:"omitempty,device_state"`
	}

	// updateDeviceRequest treats an absent field and an explicit null alike.
	updateDeviceRequest struct {
		ID    *string `json:"id" validate:"required,uuid"`
		Name  *string `json:"name"`
		Brand *string `json:"brand"`
		State *string `json:"state" validate:"omitempty,device_state"`
	}

	deviceResponse struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Brand     string    `json:"brand"`
		State     *string   `json:"state,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	errorResponse struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	}
)

func (req createDeviceRequest) toCommand() (commands.CreateDeviceCommand, error) {
	state := model.StateUnset

	if req.State != nil {
		parsed, err := model.ParseState(*req.State)
		if err != nil {
			return commands.CreateDeviceCommand{}, err
		}

		state = parsed
	}

	return commands.CreateDeviceCommand{
		Name:  req.Name,
		Brand: req.Brand,
		State: state,
	}, nil
}

func (req updateDeviceRequest) toCommand() (commands.UpdateDeviceCommand, error) {
	var rawID string
	if req.ID != nil {
		rawID = *req.ID
	}

	id, err := model.ParseDeviceID(rawID)
	if err != nil {
		return commands.UpdateDeviceCommand{}, err
	}

	state := model.None[model.State]()

	if req.State != nil {
		parsed, err := model.ParseState(*req.State)
		if err != nil {
			return commands.UpdateDeviceCommand{}, err
		}

		state = model.Some(parsed)
	}

	return commands.UpdateDeviceCommand{
		ID:    id,
		Name:  model.OptionalFromPtr(req.Name),
		Brand: model.OptionalFromPtr(req.Brand),
		State: state,
	}, nil
}

func toDeviceResponse(device *model.Device) deviceResponse {
	response := deviceResponse{
		ID:        device.ID.String(),
		Name:      device.Name,
		Brand:     device.Brand,
		CreatedAt: device.CreatedAt,
	}

	if device.State.IsSet() {
		state := device.State.String()
		response.State = &state
	}

	return response
}

func toDeviceListResponse(devices []*model.Device) []deviceResponse {
	data := make([]deviceResponse, 0, len(devices))
	for index := range devices {
		data = append(data, toDeviceResponse(devices[index]))
	}

	return data
}
