package repos

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/architeacher/device-inventory/internal/domain/model"
)

// MemoryRepository keeps devices in process memory. Stored values are never
// handed out directly; callers always get copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	devices map[model.DeviceID]*model.Device
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		devices: make(map[model.DeviceID]*model.Device),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Insert(_ context.Context, device *model.Device) (*model.Device, error) {
	stored := device.Clone()
	stored.ID = model.NewDeviceID()
	stored.CreatedAt = r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[stored.ID] = stored

	return stored.Clone(), nil
}

func (r *MemoryRepository) FetchByID(_ context.Context, id model.DeviceID) (*model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[id]
	if !ok {
		return nil, model.ErrDeviceNotFound
	}

	return device.Clone(), nil
}

func (r *MemoryRepository) FetchAll(_ context.Context) ([]*model.Device, error) {
	return r.filter(model.AllDevices()), nil
}

func (r *MemoryRepository) FetchByField(_ context.Context, field string, value any) ([]*model.Device, error) {
	if _, ok := model.FieldValue(&model.Device{}, field); !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownField, field)
	}

	return r.filter(model.ByField(field, value)), nil
}

func (r *MemoryRepository) Save(_ context.Context, device *model.Device) (*model.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := device.Clone()
	if existing, ok := r.devices[device.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = r.now()
	}

	r.devices[stored.ID] = stored

	return stored.Clone(), nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id model.DeviceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return model.ErrDeviceNotFound
	}

	delete(r.devices, id)

	return nil
}

func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MemoryRepository) filter(criteria model.Criteria) []*model.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]*model.Device, 0, len(r.devices))

	for _, device := range r.devices {
		if criteria.Matches(device) {
			devices = append(devices, device.Clone())
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].CreatedAt.Equal(devices[j].CreatedAt) {
			return devices[i].ID.String() < devices[j].ID.String()
		}

		return devices[i].CreatedAt.Before(devices[j].CreatedAt)
	})

	return devices
}
