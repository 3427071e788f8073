package checkcache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/unkn0wn-root/checkcache/otel"
	"github.com/unkn0wn-root/checkcache/provider/local"
)

func TestCheckEmitsSpansAndMetrics(t *testing.T) {
	ctx := context.Background()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	svc := newTestService(t, local.New(local.Config{}), func(o *Options) {
		o.Tracing = otel.NewTraceConfig(
			otel.WithTracerProvider(tp),
			otel.WithAttributes(attribute.String("tier", "primary")),
		)
		o.Metrics = otel.NewMetricConfig(otel.WithMeterProvider(mp))
	})
	users := For[*userResult](svc)

	var calls atomic.Int64
	exec := countingExec("user-42", "Ada", &calls, 0)
	_, err := users.Check(ctx, exec, WithRegion("Users"))
	require.NoError(t, err)
	_, err = users.Check(ctx, exec, WithRegion("Users"))
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	outcomes := make([]string, 0, 2)
	for _, s := range spans {
		require.Equal(t, "checkcache.check", s.Name())
		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range s.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		require.Equal(t, "users", attrs["checkcache.region"].AsString())
		require.Equal(t, "primary", attrs["tier"].AsString())
		outcomes = append(outcomes, attrs["checkcache.outcome"].AsString())
	}
	require.Equal(t, []string{"computed", "primary_hit"}, outcomes)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var requests int64
	var sawDuration bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "checkcache.requests":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					requests += dp.Value
				}
			case "checkcache.duration.ms":
				sawDuration = true
			}
		}
	}
	require.Equal(t, int64(2), requests)
	require.True(t, sawDuration)
}

func TestNilInstrumentationIsNoop(t *testing.T) {
	var i *instrumentation
	ctx, finish := i.start(context.Background(), "check", "")
	require.NotNil(t, ctx)
	finish(OutcomeComputed, 0, nil)
}
