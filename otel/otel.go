// Package otel carries the OpenTelemetry providers checkcache reports to.
// Both configs default to the global providers.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type MetricConfig struct {
	provider metric.MeterProvider
}

type MetricOption func(*MetricConfig)

func WithMeterProvider(p metric.MeterProvider) MetricOption {
	return func(c *MetricConfig) { c.provider = p }
}

func NewMetricConfig(opts ...MetricOption) *MetricConfig {
	c := &MetricConfig{provider: otel.GetMeterProvider()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *MetricConfig) Provider() metric.MeterProvider { return c.provider }

// TraceConfig holds the tracer provider and static span attributes
// (e.g. service or tier name).
type TraceConfig struct {
	provider   trace.TracerProvider
	attributes []attribute.KeyValue
}

type TraceOption func(*TraceConfig)

func WithTracerProvider(p trace.TracerProvider) TraceOption {
	return func(c *TraceConfig) { c.provider = p }
}

func WithAttributes(attrs ...attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) { c.attributes = append(c.attributes, attrs...) }
}

func NewTraceConfig(opts ...TraceOption) *TraceConfig {
	c := &TraceConfig{provider: otel.GetTracerProvider()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *TraceConfig) TracerProvider() trace.TracerProvider { return c.provider }
func (c *TraceConfig) Attributes() []attribute.KeyValue     { return c.attributes }
