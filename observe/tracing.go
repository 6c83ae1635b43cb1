package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/qrfetch/core"
)

// TracerName is the instrumentation scope used for spans.
const TracerName = "github.com/petal-labs/qrfetch/observe"

// Span names.
const (
	SpanRequest = "qrfetch.request"
	SpanAttempt = "qrfetch.attempt"
)

// TraceObserver emits one span per call with a child span per attempt.
//
// Spans are built when the call ends, from the timestamps in the attempt
// log, so the observer keeps no per-call state.
type TraceObserver struct {
	core.BaseObserver
	tracer trace.Tracer
}

// NewTraceObserver returns an observer using tp, or the global provider
// when tp is nil.
func NewTraceObserver(tp trace.TracerProvider) *TraceObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TraceObserver{tracer: tp.Tracer(TracerName)}
}

func (o *TraceObserver) OnCallEnd(ctx context.Context, e core.CallEndEvent) {
	ctx, span := o.tracer.Start(ctx, SpanRequest,
		trace.WithTimestamp(e.Start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("qrfetch.call_id", e.CallID),
			attribute.Int("qrfetch.attempts", len(e.Attempts)),
		),
	)

	for i, a := range e.Attempts {
		o.attemptSpan(ctx, i, a)
	}

	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetAttributes(attribute.String("qrfetch.strategy", e.Strategy))
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.End))
}

func (o *TraceObserver) attemptSpan(ctx context.Context, index int, a core.Attempt) {
	_, span := o.tracer.Start(ctx, SpanAttempt,
		trace.WithTimestamp(a.Start),
		trace.WithAttributes(
			attribute.String("qrfetch.strategy", a.Strategy),
			attribute.Int("qrfetch.attempt.index", index),
			attribute.String("qrfetch.attempt.kind", a.Kind.String()),
		),
	)
	if a.Status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", a.Status))
	}
	if a.Failed() {
		if a.Err != nil {
			span.RecordError(a.Err)
		}
		span.SetStatus(codes.Error, a.Message)
	}
	span.End(trace.WithTimestamp(a.End))
}

var _ core.Observer = (*TraceObserver)(nil)
