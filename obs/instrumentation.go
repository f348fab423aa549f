package obs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OperationRecorder encapsulates per-operation tracing and metric bookkeeping.
type OperationRecorder struct {
	start time.Time
	span  trace.Span
	attrs []attribute.KeyValue
}

// StartOperation starts a span for one engine operation and counts it.
func StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *OperationRecorder) {
	ctx, span := Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	recordOperation(attrs...)
	return ctx, &OperationRecorder{start: time.Now(), span: span, attrs: attrs}
}

// End finalizes span and latency metric for the operation.
func (r *OperationRecorder) End(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
	}
	recordLatency(time.Since(r.start).Seconds()*1000, r.attrs...)
	r.span.End()
}

// AddAttributes appends attributes to both span and subsequent metrics.
func (r *OperationRecorder) AddAttributes(attrs ...attribute.KeyValue) {
	if r == nil {
		return
	}
	r.attrs = append(r.attrs, attrs...)
	r.span.SetAttributes(attrs...)
}
