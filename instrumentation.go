package checkcache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/checkcache/otel"
)

const instrumentationName = "github.com/unkn0wn-root/checkcache"

type instrumentation struct {
	tracer     trace.Tracer
	traceAttrs []attribute.KeyValue

	requests metric.Int64Counter
	faults   metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstrumentation(mc *otel.MetricConfig, tc *otel.TraceConfig) *instrumentation {
	inst := &instrumentation{}

	if tc != nil && tc.TracerProvider() != nil {
		inst.tracer = tc.TracerProvider().Tracer(instrumentationName)
		inst.traceAttrs = append(inst.traceAttrs, tc.Attributes()...)
	}

	if mc == nil || mc.Provider() == nil {
		return inst
	}

	meter := mc.Provider().Meter(instrumentationName)
	inst.requests, _ = meter.Int64Counter(
		"checkcache.requests",
		metric.WithDescription("Cache operations by outcome"),
	)
	inst.faults, _ = meter.Int64Counter(
		"checkcache.faults",
		metric.WithDescription("Non-fatal cache tier failures"),
	)
	inst.duration, _ = meter.Float64Histogram(
		"checkcache.duration.ms",
		metric.WithDescription("Cache operation latency in milliseconds"),
	)
	return inst
}

// start opens a span for op; the returned func records outcome, fault count
// and error, then ends the span.
func (i *instrumentation) start(ctx context.Context, op, region string) (context.Context, func(outcome Outcome, faults int, err error)) {
	if i == nil {
		return ctx, func(Outcome, int, error) {}
	}

	begin := time.Now()
	attrs := []attribute.KeyValue{attribute.String("checkcache.operation", op)}
	if region != "" {
		attrs = append(attrs, attribute.String("checkcache.region", regionName(region)))
	}

	span := trace.SpanFromContext(ctx)
	if i.tracer != nil {
		ctx, span = i.tracer.Start(ctx, "checkcache."+op,
			trace.WithAttributes(append(attrs, i.traceAttrs...)...))
	}

	return ctx, func(outcome Outcome, faults int, err error) {
		a := append(attrs[:len(attrs):len(attrs)], attribute.String("checkcache.outcome", outcome.String()))
		if i.tracer != nil {
			span.SetAttributes(attribute.String("checkcache.outcome", outcome.String()),
				attribute.Int("checkcache.faults", faults))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		}
		if i.requests != nil {
			i.requests.Add(ctx, 1, metric.WithAttributes(a...))
		}
		if faults > 0 && i.faults != nil {
			i.faults.Add(ctx, int64(faults), metric.WithAttributes(attrs...))
		}
		if i.duration != nil {
			i.duration.Record(ctx, float64(time.Since(begin).Microseconds())/1000, metric.WithAttributes(a...))
		}
	}
}
