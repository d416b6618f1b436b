package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestMQHeaderCarrier_RoundTrip(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	prop := propagation.TraceContext{}
	carrier := NewMQHeaderCarrier(nil)
	prop.Inject(ctx, carrier)
	assert.NotEmpty(t, carrier.Get("traceparent"))

	extracted := prop.Extract(context.Background(), NewMQHeaderCarrier(carrier.Headers()))
	assert.Equal(t, traceID, trace.SpanContextFromContext(extracted).TraceID())
}

func TestTracer_NoopBeforeInit(t *testing.T) {
	_, span := StartSpan(context.Background(), "test")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}
