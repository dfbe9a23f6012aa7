package model

import "slices"

type SortDirection string

const SortAsc SortDirection = "ASC"

type (
	// Filter is an exact, case-sensitive equality on one device field.
	Filter struct {
		Field string
		Value any
	}

	SortField struct {
		Field     string
		Direction SortDirection
	}

	// Criteria selects and orders devices. Lists are never paginated.
	Criteria struct {
		filters []Filter
		sorting []SortField
	}
)

var creationOrder = []SortField{
	{Field: "createdAt", Direction: SortAsc},
	{Field: "id", Direction: SortAsc},
}

// AllDevices matches every device, oldest first.
func AllDevices() Criteria {
	return Criteria{sorting: creationOrder}
}

// ByField selects devices whose field equals value exactly, oldest first.
func ByField(field string, value any) Criteria {
	return AllDevices().And(field, value)
}

func (c Criteria) And(field string, value any) Criteria {
	return Criteria{
		filters: append(slices.Clone(c.filters), Filter{Field: field, Value: value}),
		sorting: c.sorting,
	}
}

func (c Criteria) Filters() []Filter    { return c.filters }
func (c Criteria) Sorting() []SortField { return c.sorting }

// Matches evaluates the filters in memory. Unknown fields never match.
func (c Criteria) Matches(device *Device) bool {
	for _, filter := range c.filters {
		value, ok := FieldValue(device, filter.Field)
		if !ok || value != FilterText(filter.Value) {
			return false
		}
	}

	return true
}

// FieldValue returns the textual value of a filterable device field.
func FieldValue(device *Device, field string) (string, bool) {
	switch field {
	case "id":
		return device.ID.String(), true
	case "name":
		return device.Name, true
	case "brand":
		return device.Brand, true
	case "state":
		return device.State.String(), true
	default:
		return "", false
	}
}

// FilterText renders a filter value the way it is stored.
func FilterText(value any) any {
	switch v := value.(type) {
	case State:
		return v.String()
	case DeviceID:
		return v.String()
	default:
		return v
	}
}
