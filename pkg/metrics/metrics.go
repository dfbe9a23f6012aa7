// Package metrics defines the measurement sink shared by the HTTP layer and
// the CQRS decorators.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	// Client records named measurements. Integer values feed counters and
	// floating point values feed histograms.
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	// Descriptor is the metadata attached to an OTEL instrument on registration.
	Descriptor struct {
		Description string
		Unit        string
	}
)

// DescriptorFor derives the unit of an instrument from its key suffix.
func DescriptorFor(key string) Descriptor {
	switch {
	case strings.HasSuffix(key, ".duration"), strings.HasSuffix(key, "_seconds"):
		return Descriptor{Description: "Elapsed time of " + key, Unit: "s"}
	case strings.HasSuffix(key, "_bytes"):
		return Descriptor{Description: "Size recorded by " + key, Unit: "By"}
	default:
		return Descriptor{Description: "Occurrences of " + key, Unit: "1"}
	}
}

func RegisterInt64Counter(m metric.Meter, name string) (metric.Int64Counter, error) {
	descriptor := DescriptorFor(name)

	counter, err := m.Int64Counter(
		name,
		metric.WithDescription(descriptor.Description),
		metric.WithUnit(descriptor.Unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", name, err)
	}

	return counter, nil
}

func RegisterFloat64Histogram(m metric.Meter, name string) (metric.Float64Histogram, error) {
	descriptor := DescriptorFor(name)

	histogram, err := m.Float64Histogram(
		name,
		metric.WithDescription(descriptor.Description),
		metric.WithUnit(descriptor.Unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", name, err)
	}

	return histogram, nil
}
