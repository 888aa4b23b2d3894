// Package confirmations applies notification outcomes to appointments.
package confirmations

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/equitylawandco/lawsite/libs/events"
	"github.com/segmentio/kafka-go"
)

type Marker interface {
	MarkConfirmationSent(ctx context.Context, appointmentID string) error
}

// Handler returns a consumer handler for the notification result topics.
// A sent result flips confirmation_sent; a failed one is only logged, the
// appointment stays booked.
func Handler(marker Marker, logger *slog.Logger) func(ctx context.Context, msg kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var res events.NotificationResult
		if err := json.Unmarshal(msg.Value, &res); err != nil {
			logger.Error("invalid notification result payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if res.AggregateID == "" {
			logger.Error("notification result without appointment id", "topic", msg.Topic)
			return nil
		}

		switch msg.Topic {
		case events.AppointmentConfirmationSentV1:
			return marker.MarkConfirmationSent(ctx, res.AggregateID)
		case events.AppointmentConfirmationFailedV1:
			logger.Warn("appointment confirmation email failed",
				"appointment_id", res.AggregateID,
				"provider", res.Provider,
				"sent", res.Sent,
				"failed", res.Failed,
				"error", res.Error,
			)
		}
		return nil
	}
}
