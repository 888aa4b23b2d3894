package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/libs/db"
	"github.com/equitylawandco/lawsite/libs/events"
	"github.com/equitylawandco/lawsite/libs/outbox"
	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"
)

// ResultWriter enqueues notification results through the outbox.
type ResultWriter struct {
	db     db.TxBeginner
	outbox *outbox.Repository
}

func NewResultWriter(b db.TxBeginner, outboxRepo *outbox.Repository) *ResultWriter {
	return &ResultWriter{db: b, outbox: outboxRepo}
}

func (w *ResultWriter) Write(ctx context.Context, eventType string, res events.NotificationResult) error {
	return db.InTx(ctx, w.db, func(tx pgx.Tx) error {
		return w.outbox.InsertJSON(ctx, tx, "notification", res.AggregateID, eventType, res)
	})
}

type ResultSink interface {
	Write(ctx context.Context, eventType string, res events.NotificationResult) error
}

type Handlers struct {
	dispatcher *Dispatcher
	results    ResultSink
	logger     *slog.Logger
	now        func() time.Time
}

func NewHandlers(d *Dispatcher, results ResultSink, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{dispatcher: d, results: results, logger: logger, now: time.Now}
}

// Booked handles booking.appointment.booked.v1. Malformed payloads are dropped;
// only a failure to enqueue the result is returned for redelivery.
func (h *Handlers) Booked(ctx context.Context, msg kafka.Message) error {
	var evt events.AppointmentBooked
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.Error("invalid appointment payload", "err", err)
		return nil
	}
	if evt.AppointmentID == "" || strings.TrimSpace(evt.ClientEmail) == "" {
		h.logger.Error("missing appointment fields", "appointment_id", evt.AppointmentID)
		return nil
	}

	out := h.dispatcher.AppointmentBooked(ctx, evt)
	eventType := events.AppointmentConfirmationSentV1
	if !out.PrimaryOK {
		eventType = events.AppointmentConfirmationFailedV1
	}
	if err := h.publish(ctx, eventType, KindAppointment, evt.AppointmentID, out); err != nil {
		return err
	}
	h.logger.Info("appointment confirmation processed", "appointment_id", evt.AppointmentID, "sent", out.Sent, "failed", out.Failed)
	return nil
}

// Contact handles content.contact.submitted.v1.
func (h *Handlers) Contact(ctx context.Context, msg kafka.Message) error {
	var evt events.ContactSubmitted
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.Error("invalid contact payload", "err", err)
		return nil
	}
	if evt.MessageID == 0 || strings.TrimSpace(evt.Email) == "" {
		h.logger.Error("missing contact fields", "message_id", evt.MessageID)
		return nil
	}

	out := h.dispatcher.ContactSubmitted(ctx, evt)
	eventType := events.ContactNotificationSentV1
	if !out.PrimaryOK {
		eventType = events.ContactNotificationFailedV1
	}
	if err := h.publish(ctx, eventType, KindContact, fmt.Sprintf("%d", evt.MessageID), out); err != nil {
		return err
	}
	h.logger.Info("contact notification processed", "message_id", evt.MessageID, "sent", out.Sent, "failed", out.Failed)
	return nil
}

func (h *Handlers) publish(ctx context.Context, eventType, kind, aggregateID string, out Outcome) error {
	res := events.NotificationResult{
		AggregateID: aggregateID,
		Kind:        kind,
		Provider:    h.dispatcher.Provider(),
		Sent:        out.Sent,
		Failed:      out.Failed,
		Error:       out.Error(),
		At:          h.now().UTC(),
	}
	if err := h.results.Write(ctx, eventType, res); err != nil {
		h.logger.Error("failed to enqueue notification result", "err", err, "event_type", eventType, "aggregate_id", aggregateID)
		return err
	}
	return nil
}
