package contour

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gogpu/contour"

func (o *options) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	tp := o.tracer
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(instrumentationName).Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// endSpan records the request outcome on span and ends it.
func endSpan(span oteltrace.Span, st stats, err error) {
	span.SetAttributes(
		attribute.Int("contour.values", st.values),
		attribute.Int("contour.polylines", st.polylines),
		attribute.Int("contour.points", st.points),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
