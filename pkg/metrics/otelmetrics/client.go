// Package otelmetrics provides a metrics.Client backed by the OpenTelemetry SDK.
// Measurements are kept in-process by a manual reader and served as a JSON
// snapshot through Handler.
package otelmetrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/architeacher/device-inventory/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/architeacher/device-inventory"

type (
	Client struct {
		provider *sdkmetric.MeterProvider
		reader   *sdkmetric.ManualReader
		meter    metric.Meter

		mu         sync.Mutex
		counters   map[string]metric.Int64Counter
		histograms map[string]metric.Float64Histogram
	}

	// Point is a flattened view of one recorded series.
	Point struct {
		Attributes map[string]string `json:"attributes,omitempty"`
		Value      float64           `json:"value,omitempty"`
		Count      uint64            `json:"count,omitempty"`
		Sum        float64           `json:"sum,omitempty"`
	}
)

var _ metrics.Client = (*Client)(nil)

func NewClient(res *resource.Resource) *Client {
	reader := sdkmetric.NewManualReader()

	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}

	provider := sdkmetric.NewMeterProvider(opts...)

	return &Client{
		provider:   provider,
		reader:     reader,
		meter:      provider.Meter(meterName),
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

func (c *Client) Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue) {
	opt := metric.WithAttributes(attributes...)

	switch v := value.(type) {
	case int:
		if counter := c.counter(key); counter != nil {
			counter.Add(ctx, int64(v), opt)
		}
	case int64:
		if counter := c.counter(key); counter != nil {
			counter.Add(ctx, v, opt)
		}
	case uint64:
		if counter := c.counter(key); counter != nil {
			counter.Add(ctx, int64(v), opt)
		}
	case float64:
		if histogram := c.histogram(key); histogram != nil {
			histogram.Record(ctx, v, opt)
		}
	}
}

func (c *Client) counter(key string) metric.Int64Counter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.counters[key]; ok {
		return counter
	}

	counter, err := metrics.RegisterInt64Counter(c.meter, key)
	if err != nil {
		return nil
	}

	c.counters[key] = counter

	return counter
}

func (c *Client) histogram(key string) metric.Float64Histogram {
	c.mu.Lock()
	defer c.mu.Unlock()

	if histogram, ok := c.histograms[key]; ok {
		return histogram
	}

	histogram, err := metrics.RegisterFloat64Histogram(c.meter, key)
	if err != nil {
		return nil
	}

	c.histograms[key] = histogram

	return histogram
}

// Snapshot collects the current state of every instrument.
func (c *Client) Snapshot(ctx context.Context) (map[string][]Point, error) {
	var rm metricdata.ResourceMetrics
	if err := c.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}

	out := make(map[string][]Point)

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = append(out[m.Name], Point{
						Attributes: toMap(dp.Attributes),
						Value:      float64(dp.Value),
					})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = append(out[m.Name], Point{
						Attributes: toMap(dp.Attributes),
						Count:      dp.Count,
						Sum:        dp.Sum,
					})
				}
			}
		}
	}

	return out, nil
}

func (c *Client) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := c.Snapshot(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshot)
	})
}

func (c *Client) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

func toMap(set attribute.Set) map[string]string {
	if set.Len() == 0 {
		return nil
	}

	out := make(map[string]string, set.Len())
	for _, kv := range set.ToSlice() {
		out[string(kv.Key)] = kv.Value.Emit()
	}

	return out
}
