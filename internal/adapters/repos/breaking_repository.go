package repos

import (
	"context"
	"errors"

	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/architeacher/device-inventory/pkg/circuitbreaker"
)

// BreakingRepository guards a device repository with a circuit breaker.
// Only storage failures count against the breaker.
type BreakingRepository struct {
	base ports.DeviceRepository
	cb   *circuitbreaker.CircuitBreaker[any]
}

func NewBreakingRepository(base ports.DeviceRepository, cfg circuitbreaker.Config) *BreakingRepository {
	if cfg.IsSuccessful == nil {
		cfg.IsSuccessful = IsExpectedRepositoryError
	}

	return &BreakingRepository{
		base: base,
		cb:   circuitbreaker.New[any](cfg),
	}
}

// IsExpectedRepositoryError reports whether err is a domain outcome rather
// than a storage failure.
func IsExpectedRepositoryError(err error) bool {
	return err == nil ||
		errors.Is(err, model.ErrDeviceNotFound) ||
		errors.Is(err, model.ErrDuplicateDevice) ||
		errors.Is(err, model.ErrUnknownField) ||
		errors.Is(err, context.Canceled)
}

func (r *BreakingRepository) Name() string {
	return r.cb.Name()
}

func (r *BreakingRepository) State() string {
	return r.cb.State()
}

func (r *BreakingRepository) Insert(ctx context.Context, device *model.Device) (*model.Device, error) {
	return executeDevice(r.cb, func() (*model.Device, error) {
		return r.base.Insert(ctx, device)
	})
}

func (r *BreakingRepository) FetchByID(ctx context.Context, id model.DeviceID) (*model.Device, error) {
	return executeDevice(r.cb, func() (*model.Device, error) {
		return r.base.FetchByID(ctx, id)
	})
}

func (r *BreakingRepository) FetchAll(ctx context.Context) ([]*model.Device, error) {
	return executeDevices(r.cb, func() ([]*model.Device, error) {
		return r.base.FetchAll(ctx)
	})
}

func (r *BreakingRepository) FetchByField(ctx context.Context, field string, value any) ([]*model.Device, error) {
	return executeDevices(r.cb, func() ([]*model.Device, error) {
		return r.base.FetchByField(ctx, field, value)
	})
}

func (r *BreakingRepository) Save(ctx context.Context, device *model.Device) (*model.Device, error) {
	return executeDevice(r.cb, func() (*model.Device, error) {
		return r.base.Save(ctx, device)
	})
}

func (r *BreakingRepository) DeleteByID(ctx context.Context, id model.DeviceID) error {
	_, err := circuitbreaker.Execute(r.cb, func() (any, error) {
		return nil, r.base.DeleteByID(ctx, id)
	})

	return err
}

// Ping bypasses the breaker so health probes always see the real backend.
func (r *BreakingRepository) Ping(ctx context.Context) error {
	return r.base.Ping(ctx)
}

func executeDevice(cb *circuitbreaker.CircuitBreaker[any], fn func() (*model.Device, error)) (*model.Device, error) {
	result, err := circuitbreaker.Execute(cb, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.Device), nil
}

func executeDevices(cb *circuitbreaker.CircuitBreaker[any], fn func() ([]*model.Device, error)) ([]*model.Device, error) {
	result, err := circuitbreaker.Execute(cb, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}

	return result.([]*model.Device), nil
}
