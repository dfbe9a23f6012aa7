package model_test

import (
	"testing"

	"github.com/architeacher/device-inventory/internal/domain/model"
	"github.com/stretchr/testify/require"
)

func TestCriteria(t *testing.T) {
	t.Parallel()

	all := model.AllDevices()
	require.Empty(t, all.Filters())
	require.Equal(t, []model.SortField{
		{Field: "createdAt", Direction: model.SortAsc},
		{Field: "id", Direction: model.SortAsc},
	}, all.Sorting())

	byBrand := model.ByField("brand", "Garmin")
	require.Equal(t, []model.Filter{{Field: "brand", Value: "Garmin"}}, byBrand.Filters())
	require.Equal(t, all.Sorting(), byBrand.Sorting())

	combined := byBrand.And("state", model.StateInUse)
	require.Len(t, combined.Filters(), 2)
	require.Len(t, byBrand.Filters(), 1)
	require.Equal(t, all.Sorting(), combined.Sorting())
}

func TestCriteria_Matches(t *testing.T) {
	t.Parallel()

	device := &model.Device{
		ID:    model.NewDeviceID(),
		Name:  "Watch",
		Brand: "Garmin",
		State: model.StateInUse,
	}

	cases := []struct {
		name     string
		criteria model.Criteria
		expected bool
	}{
		{name: "no filters match everything", criteria: model.AllDevices(), expected: true},
		{name: "exact brand", criteria: model.ByField("brand", "Garmin"), expected: true},
		{name: "brand is case-sensitive", criteria: model.ByField("brand", "garmin"), expected: false},
		{name: "typed state value", criteria: model.ByField("state", model.StateInUse), expected: true},
		{name: "id value", criteria: model.ByField("id", device.ID), expected: true},
		{name: "unknown field", criteria: model.ByField("color", "red"), expected: false},
		{
			name:     "every filter must hold",
			criteria: model.ByField("brand", "Garmin").And("name", "Phone"),
			expected: false,
		},
		{
			name:     "unset state never equals a named state",
			criteria: model.ByField("state", model.StateAvailable),
			expected: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, tc.criteria.Matches(device))
		})
	}
}
