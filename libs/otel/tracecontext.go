package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// W3C trace context keys stored next to outbox rows.
const (
	TraceparentKey = "traceparent"
	TracestateKey  = "tracestate"
)

// TraceContextStrings captures the active span so an outbox row can resume it when published.
func TraceContextStrings(ctx context.Context) (traceparent string, tracestate string) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.Get(TraceparentKey), carrier.Get(TracestateKey)
}

func ContextWithTraceContext(ctx context.Context, traceparent string, tracestate string) context.Context {
	if traceparent == "" {
		return ctx
	}
	carrier := propagation.MapCarrier{TraceparentKey: traceparent}
	if tracestate != "" {
		carrier.Set(TracestateKey, tracestate)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
