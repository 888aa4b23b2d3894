// Package events holds the Kafka topic names and payloads exchanged between
// services. The topic name equals the event type.
package events

import "time"

const (
	AppointmentBookedV1 = "booking.appointment.booked.v1"

	ContactSubmittedV1 = "content.contact.submitted.v1"

	AppointmentConfirmationSentV1   = "notification.appointment_confirmation.sent.v1"
	AppointmentConfirmationFailedV1 = "notification.appointment_confirmation.failed.v1"
	ContactNotificationSentV1       = "notification.contact.sent.v1"
	ContactNotificationFailedV1     = "notification.contact.failed.v1"
)

// AppointmentBooked is published by booking-service when an appointment is stored.
type AppointmentBooked struct {
	AppointmentID      string    `json:"appointment_id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	ClientName         string    `json:"client_name"`
	ClientEmail        string    `json:"client_email"`
	ClientPhone        string    `json:"client_phone"`
	PracticeArea       string    `json:"practice_area,omitempty"`
	Date               string    `json:"appointment_date"`
	Time               string    `json:"appointment_time"`
	DurationMinutes    int       `json:"duration_minutes"`
	Notes              string    `json:"notes,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// ContactSubmitted is published by content-service for every contact form message.
type ContactSubmitted struct {
	MessageID   int64     `json:"message_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NotificationResult reports the outcome of a notification batch for one aggregate.
type NotificationResult struct {
	AggregateID string    `json:"aggregate_id"`
	Kind        string    `json:"kind"`
	Provider    string    `json:"provider"`
	Sent        int       `json:"sent"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"`
	At          time.Time `json:"at"`
}
