package metrics_test

import (
	"testing"

	"github.com/architeacher/device-inventory/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestDescriptorFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key  string
		unit string
	}{
		{key: "commands.createdevicecommand.duration", unit: "s"},
		{key: "http_request_duration_seconds", unit: "s"},
		{key: "http_response_size_bytes", unit: "By"},
		{key: "http_requests_total", unit: "1"},
		{key: "queries.getdevicequery.success", unit: "1"},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()

			descriptor := metrics.DescriptorFor(tc.key)
			require.Equal(t, tc.unit, descriptor.Unit)
			require.Contains(t, descriptor.Description, tc.key)
		})
	}
}
