package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "lawsite"

// BookingMetrics tracks booking outcomes and availability query latency.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	attempts     *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
	statusUpdate *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "availability_query_seconds",
			Help:      "Latency of availability queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		statusUpdate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "status_updates_total",
			Help:      "Appointment status changes by target status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attempts, m.queryLatency, m.statusUpdate)
	return m
}

func (m *BookingMetrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveQuery(query string, seconds float64) {
	if m == nil {
		return
	}
	m.queryLatency.WithLabelValues(query).Observe(seconds)
}

func (m *BookingMetrics) ObserveStatusUpdate(status string) {
	if m == nil {
		return
	}
	m.statusUpdate.WithLabelValues(status).Inc()
}

// NotificationMetrics tracks outbound email results.
type NotificationMetrics struct {
	sent *prometheus.CounterVec
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	m := &NotificationMetrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "emails_total",
			Help:      "Outbound emails by template, provider and status",
		}, []string{"template", "provider", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sent)
	return m
}

func (m *NotificationMetrics) ObserveEmail(template, provider string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.sent.WithLabelValues(template, provider, status).Inc()
}

// ContentMetrics tracks contact form submissions.
type ContentMetrics struct {
	contact prometheus.Counter
}

func NewContentMetrics(reg prometheus.Registerer) *ContentMetrics {
	m := &ContentMetrics{
		contact: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "contact_messages_total",
			Help:      "Contact form messages received",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.contact)
	return m
}

func (m *ContentMetrics) ObserveContactMessage() {
	if m == nil {
		return
	}
	m.contact.Inc()
}
