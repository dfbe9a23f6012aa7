package services

import (
	"context"

	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/internal/ports"
)

type DevicesService struct {
	repo ports.DeviceRepository
}

func NewDevicesService(repo ports.DeviceRepository) *DevicesService {
	return &DevicesService{repo: repo}
}

func (s *DevicesService) CreateDevice(ctx context.Context, draft model.DeviceDraft) (*model.Device, error) {
	return s.repo.Insert(ctx, model.NewDeviceFromDraft(draft))
}

func (s *DevicesService) GetDevice(ctx context.Context, id model.DeviceID) (*model.Device, error) {
	return s.repo.FetchByID(ctx, id)
}

func (s *DevicesService) ListDevices(ctx context.Context) ([]*model.Device, error) {
	return s.repo.FetchAll(ctx)
}

func (s *DevicesService) ListDevicesByBrand(ctx context.Context, brand string) ([]*model.Device, error) {
	return s.repo.FetchByField(ctx, "brand", brand)
}

func (s *DevicesService) ListDevicesByState(ctx context.Context, rawState string) ([]*model.Device, error) {
	state, err := model.ParseState(rawState)
	if err != nil {
		return nil, err
	}

	return s.repo.FetchByField(ctx, "state", state)
}

func (s *DevicesService) UpdateDevice(ctx context.Context, patch model.DevicePatch) (*model.Device, error) {
	device, err := s.repo.FetchByID(ctx, patch.ID)
	if err != nil {
		return nil, err
	}

	if err := device.ApplyPatch(patch); err != nil {
		return nil, err
	}

	return s.repo.Save(ctx, device)
}

func (s *DevicesService) DeleteDevice(ctx context.Context, id model.DeviceID) error {
	device, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if !device.CanDelete() {
		return model.ErrCannotDeleteInUseDevice
	}

	return s.repo.DeleteByID(ctx, id)
}
