package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBookingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveAttempt("booked")
	m.ObserveAttempt("booked")
	m.ObserveAttempt("conflict")
	m.ObserveQuery("available_slots", 0.01)

	if got := testutil.ToFloat64(m.attempts.WithLabelValues("booked")); got != 2 {
		t.Fatalf("expected 2 booked, got %v", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("conflict")); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var b *BookingMetrics
	b.ObserveAttempt("booked")
	b.ObserveQuery("x", 1)
	b.ObserveStatusUpdate("confirmed")

	var n *NotificationMetrics
	n.ObserveEmail("appointment_client", "brevo", true)

	var c *ContentMetrics
	c.ObserveContactMessage()
}

func TestNotificationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNotificationMetrics(reg)
	m.ObserveEmail("appointment_client", "brevo", false)
	if got := testutil.ToFloat64(m.sent.WithLabelValues("appointment_client", "brevo", "failed")); got != 1 {
		t.Fatalf("expected 1 failed, got %v", got)
	}
}
