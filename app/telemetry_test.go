package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/paw-chain/tee-oracle/x/oracle/types"
)

func TestCallMetrics(t *testing.T) {
	reader := metricsdk.NewManualReader()
	provider := metricsdk.NewMeterProvider(metricsdk.WithReader(reader))

	m, err := NewCallMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCall(ctx, types.TypeMsgReportPrice, time.Millisecond, nil)
	m.RecordCall(ctx, types.TypeMsgReportPrice, time.Millisecond, types.ErrOraclePaused)
	m.RecordVersion(ctx, 7)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := make(map[string]metricdata.Metrics)
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		byName[metric.Name] = metric
	}

	calls, ok := byName["oracle.call.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, calls.DataPoints, 2)

	results := make(map[string]int64)
	for _, dp := range calls.DataPoints {
		result, _ := dp.Attributes.Value("call.result")
		results[result.AsString()] = dp.Value
	}
	require.Equal(t, map[string]int64{"success": 1, "state": 1}, results)

	version, ok := byName["oracle.store.version"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Equal(t, int64(7), version.DataPoints[0].Value)

	var nilMetrics *CallMetrics
	nilMetrics.RecordCall(ctx, "x", 0, nil)
}
