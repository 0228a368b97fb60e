package vizier

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/tapvizier/vizier-go/pkg/vizier"
	instrumentationVersion = "0.1.0"
	metricKeyPrefix        = "vizier.query."
)

type telemetry struct {
	tracer   trace.Tracer
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	meter := mp.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))
	t := &telemetry{
		tracer: tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion)),
	}

	// instrument creation only fails on invalid names; fall back to nil instruments
	if c, err := meter.Int64Counter(
		metricKeyPrefix+"count",
		metric.WithDescription("Number of TAP queries issued"),
		metric.WithUnit("{queries}"),
	); err == nil {
		t.count = c
	}
	if h, err := meter.Float64Histogram(
		metricKeyPrefix+"duration",
		metric.WithDescription("Duration of TAP queries including decoding"),
		metric.WithUnit("ms"),
	); err == nil {
		t.duration = h
	}
	return t
}

// start opens the query span.
func (t *telemetry) start(ctx context.Context, endpoint, method, requestID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "vizier.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("vizier.endpoint", endpoint),
			attribute.String("http.request.method", method),
			attribute.String("vizier.request_id", requestID),
		),
	)
}

// finish closes the span and records the metrics for one call.
func (t *telemetry) finish(ctx context.Context, span trace.Span, started time.Time, statusCode, rows int, err error) {
	if statusCode > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", statusCode))
	}

	status := "success"
	attrs := []attribute.KeyValue{}
	if err != nil {
		status = "error"
		kind := errorKind(err)
		attrs = append(attrs, attribute.String("error.kind", kind))
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
	} else {
		span.SetAttributes(attribute.Int("vizier.rows", rows))
	}
	span.End()

	attrs = append(attrs, attribute.String("status", status))
	if t.count != nil {
		t.count.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if t.duration != nil {
		t.duration.Record(ctx, float64(time.Since(started).Milliseconds()), metric.WithAttributes(attrs...))
	}
}
