package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	meta := ExtractEventMeta(kafka.Message{Topic: "booking.appointment.booked.v1", Key: []byte("appt-1")})
	if meta.EventID != "appt-1" || meta.EventType != "booking.appointment.booked.v1" {
		t.Fatalf("unexpected meta %+v", meta)
	}

	msg := kafka.Message{Topic: "t", Headers: EventMeta{EventID: "e-1", EventType: "x.v1"}.Headers()}
	meta = ExtractEventMeta(msg)
	if meta.EventID != "e-1" || meta.EventType != "x.v1" {
		t.Fatalf("unexpected meta from headers %+v", meta)
	}
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectTraceHeaders(ctx, EventMeta{EventID: "e", EventType: "t"}.Headers())
	if HeaderValue(headers, "traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	out := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), kafka.Message{Headers: headers}))
	if out.TraceID() != traceID {
		t.Fatalf("expected trace id %s, got %s", traceID, out.TraceID())
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka:9092, ,kafka2:9092 ")
	if len(got) != 2 || got[1] != "kafka2:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
}

func TestReadyCheckWithoutBrokers(t *testing.T) {
	if err := ReadyCheck(" , ")(context.Background()); err == nil {
		t.Fatal("expected error when no brokers are configured")
	}
}
