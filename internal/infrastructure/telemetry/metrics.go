package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PlatformCallBuckets span cached product lookups up to purchases that take tens of seconds
var PlatformCallBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// AdapterMetrics counts platform adapter calls and records their latency,
// both keyed by function, transport and outcome
type AdapterMetrics struct {
	calls   metric.Int64Counter
	latency metric.Float64Histogram
}

func NewAdapterMetrics(meter metric.Meter) (*AdapterMetrics, error) {
	calls, err := meter.Int64Counter("platform_adapter_calls_total",
		metric.WithDescription("Number of platform adapter calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("register adapter call counter: %w", err)
	}
	latency, err := meter.Float64Histogram("platform_adapter_call_duration_seconds",
		metric.WithDescription("Platform adapter call latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(PlatformCallBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("register adapter latency histogram: %w", err)
	}
	return &AdapterMetrics{calls: calls, latency: latency}, nil
}

// Observe records one finished call; a non-nil err counts as a failure
func (m *AdapterMetrics) Observe(ctx context.Context, function, transport string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	set := metric.WithAttributeSet(attribute.NewSet(
		attribute.String("function", function),
		attribute.String("transport", transport),
		attribute.String("outcome", outcome),
	))
	m.calls.Add(ctx, 1, set)
	m.latency.Record(ctx, elapsed.Seconds(), set)
}
