package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

// CallMetrics records executed oracle operations through an otel meter
type CallMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	height   metric.Int64Gauge
}

// NewCallMetrics creates the instruments on meter
func NewCallMetrics(meter metric.Meter) (*CallMetrics, error) {
	calls, err := meter.Int64Counter(
		"oracle.call.total",
		metric.WithDescription("Total number of executed oracle calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"oracle.call.processing_time",
		metric.WithDescription("Oracle call processing time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	height, err := meter.Int64Gauge(
		"oracle.store.version",
		metric.WithDescription("Latest committed store version"),
		metric.WithUnit("{version}"),
	)
	if err != nil {
		return nil, err
	}

	return &CallMetrics{
		calls:    calls,
		duration: duration,
		height:   height,
	}, nil
}

// RecordCall records one executed call and the error class it ended with
func (m *CallMetrics) RecordCall(ctx context.Context, op string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	result := "success"
	if err != nil {
		result = string(types.ClassOf(err))
	}

	attrs := metric.WithAttributes(
		attribute.String("call.op", op),
		attribute.String("call.result", result),
	)
	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordVersion records the latest committed store version
func (m *CallMetrics) RecordVersion(ctx context.Context, version int64) {
	if m == nil {
		return
	}
	m.height.Record(ctx, version)
}
