package otel

import (
	"testing"

	"github.com/stretchr/testify/require"
	global "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestTraceConfigDefaultsToGlobal(t *testing.T) {
	original := global.GetTracerProvider()
	custom := noop.NewTracerProvider()
	global.SetTracerProvider(custom)
	t.Cleanup(func() { global.SetTracerProvider(original) })

	cfg := NewTraceConfig()
	require.Equal(t, custom, cfg.TracerProvider())
	require.Empty(t, cfg.Attributes())
}

func TestTraceConfigOptions(t *testing.T) {
	p := noop.NewTracerProvider()
	cfg := NewTraceConfig(
		WithTracerProvider(p),
		WithAttributes(attribute.String("tier", "primary")),
		WithAttributes(attribute.Bool("debug", true)),
	)
	require.Equal(t, p, cfg.TracerProvider())
	require.Len(t, cfg.Attributes(), 2)
}

func TestMetricConfigOptions(t *testing.T) {
	p := metricnoop.NewMeterProvider()
	require.Equal(t, p, NewMetricConfig(WithMeterProvider(p)).Provider())
}
