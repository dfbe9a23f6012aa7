// Package noop discards every measurement. It backs the service when
// metrics are disabled and keeps unit tests free of an OTEL meter.
package noop

import (
	"context"
	"net/http"

	"github.com/architeacher/device-inventory/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

var _ metrics.Client = MetricsClient{}

const disabledBody = `{"message":"metrics are disabled","status":404}`

type MetricsClient struct{}

func NewMetricsClient() MetricsClient {
	return MetricsClient{}
}

func (MetricsClient) Inc(context.Context, string, any, ...attribute.KeyValue) {}

// Handler answers scrapes with a JSON 404 so a disabled exporter looks like
// any other missing route.
func (MetricsClient) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(disabledBody))
	})
}

func (MetricsClient) Shutdown(context.Context) error {
	return nil
}
