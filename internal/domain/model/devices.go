package model

import (
	"time"

	"github.com/google/uuid"
)

type DeviceID struct {
	uuid.UUID
}

func NewDeviceID() DeviceID {
	return DeviceID{UUID: uuid.Must(uuid.NewV7())}
}

func ParseDeviceID(s string) (DeviceID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return DeviceID{}, ErrInvalidDeviceID
	}

	return DeviceID{UUID: id}, nil
}

func (d DeviceID) String() string {
	return d.UUID.String()
}

func (d DeviceID) IsZero() bool {
	return d.UUID == uuid.Nil
}

type (
	// Device is the stored device record. ID and CreatedAt are owned by the
	// persistence gateway and never change once assigned.
	Device struct {
		ID        DeviceID
		Name      string
		Brand     string
		State     State
		CreatedAt time.Time
	}

	// DeviceDraft carries the caller-controlled fields of a device to create.
	DeviceDraft struct {
		Name  string
		Brand string
		State State
	}

	// DevicePatch is a partial update. Unset fields leave the stored value untouched.
	DevicePatch struct {
		ID    DeviceID
		Name  Optional[string]
		Brand Optional[string]
		State Optional[State]
	}
)

// NewDeviceFromDraft builds an unsaved device. ID and CreatedAt stay zero
// until the persistence gateway assigns them.
func NewDeviceFromDraft(draft DeviceDraft) *Device {
	return &Device{
		Name:  draft.Name,
		Brand: draft.Brand,
		State: draft.State,
	}
}

func (d *Device) IsInUse() bool {
	return d.State == StateInUse
}

func (d *Device) CanUpdateNameAndBrand() bool {
	return !d.IsInUse()
}

func (d *Device) CanDelete() bool {
	return !d.IsInUse()
}

// ApplyPatch merges the supplied fields into d. The in-use guard is checked
// against the state d holds before the patch, and nothing is applied when it
// rejects the change.
func (d *Device) ApplyPatch(patch DevicePatch) error {
	if !d.CanUpdateNameAndBrand() {
		if name, ok := patch.Name.Get(); ok && name != d.Name {
			return ErrCannotUpdateInUseDevice
		}

		if brand, ok := patch.Brand.Get(); ok && brand != d.Brand {
			return ErrCannotUpdateInUseDevice
		}
	}

	if name, ok := patch.Name.Get(); ok {
		d.Name = name
	}

	if brand, ok := patch.Brand.Get(); ok {
		d.Brand = brand
	}

	if state, ok := patch.State.Get(); ok {
		d.State = state
	}

	return nil
}

// Clone returns a copy that can be mutated without affecting d.
func (d *Device) Clone() *Device {
	clone := *d

	return &clone
}
