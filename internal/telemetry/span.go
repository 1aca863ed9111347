package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan opens a child span of whatever span ctx carries.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(scope).Start(ctx, name, trace.WithAttributes(attrs...))
}

// FailSpan marks span as failed with err. A nil err leaves it untouched.
func FailSpan(span trace.Span, err error, status string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
}
