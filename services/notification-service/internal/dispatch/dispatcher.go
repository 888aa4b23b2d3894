// Package dispatch turns domain events into emails and records every attempt.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/equitylawandco/lawsite/libs/events"
	"github.com/equitylawandco/lawsite/libs/metrics"
	"github.com/equitylawandco/lawsite/services/notification-service/internal/email"
	"github.com/equitylawandco/lawsite/services/notification-service/internal/storage"
	"github.com/equitylawandco/lawsite/services/notification-service/internal/templates"
)

const (
	KindAppointment = "appointment_confirmation"
	KindContact     = "contact"
)

type Recorder interface {
	Insert(ctx context.Context, n storage.Notification) error
}

// Outcome summarizes one event. PrimaryOK reports whether the email to the
// client (or contact sender) went out.
type Outcome struct {
	Sent      int
	Failed    int
	PrimaryOK bool
	Errors    []string
}

func (o Outcome) Error() string {
	return strings.Join(o.Errors, "; ")
}

type Dispatcher struct {
	sender     email.Sender
	renderer   *templates.Renderer
	recorder   Recorder
	metrics    *metrics.NotificationMetrics
	adminEmail string
	logger     *slog.Logger
}

func NewDispatcher(sender email.Sender, renderer *templates.Renderer, recorder Recorder, m *metrics.NotificationMetrics, adminEmail string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:     sender,
		renderer:   renderer,
		recorder:   recorder,
		metrics:    m,
		adminEmail: strings.TrimSpace(adminEmail),
		logger:     logger,
	}
}

func (d *Dispatcher) Provider() string {
	return d.sender.Provider()
}

// AppointmentBooked sends the client confirmation and the admin alert.
func (d *Dispatcher) AppointmentBooked(ctx context.Context, a events.AppointmentBooked) Outcome {
	var out Outcome
	client, err := d.renderer.AppointmentClient(a)
	out.PrimaryOK = d.deliver(ctx, &out, KindAppointment, a.AppointmentID, "appointment_client", email.Message{To: a.ClientEmail, ToName: a.ClientName}, client, err)

	if d.adminEmail != "" {
		admin, err := d.renderer.AppointmentAdmin(a)
		d.deliver(ctx, &out, KindAppointment, a.AppointmentID, "appointment_admin", email.Message{To: d.adminEmail}, admin, err)
	}
	return out
}

// ContactSubmitted alerts the firm and acknowledges the sender.
func (d *Dispatcher) ContactSubmitted(ctx context.Context, c events.ContactSubmitted) Outcome {
	var out Outcome
	id := fmt.Sprintf("%d", c.MessageID)
	if d.adminEmail != "" {
		admin, err := d.renderer.ContactAdmin(c)
		d.deliver(ctx, &out, KindContact, id, "contact_admin", email.Message{To: d.adminEmail}, admin, err)
	}
	user, err := d.renderer.ContactUser(c)
	out.PrimaryOK = d.deliver(ctx, &out, KindContact, id, "contact_user", email.Message{To: c.Email, ToName: c.Name}, user, err)
	return out
}

func (d *Dispatcher) deliver(ctx context.Context, out *Outcome, kind, aggregateID, tmpl string, msg email.Message, rendered templates.Rendered, renderErr error) bool {
	n := storage.Notification{
		Kind:        kind,
		AggregateID: aggregateID,
		Template:    tmpl,
		Recipient:   msg.To,
		Subject:     rendered.Subject,
		Provider:    d.sender.Provider(),
		Status:      storage.StatusFailed,
	}

	if renderErr != nil {
		n.Error = renderErr.Error()
	} else {
		msg.Subject = rendered.Subject
		msg.HTML = rendered.HTML
		res, err := d.sender.Send(ctx, msg)
		n.StatusCode = res.StatusCode
		n.Response = res.Body
		switch {
		case err != nil:
			n.Error = err.Error()
		case !res.OK():
			n.Error = fmt.Sprintf("provider returned status %d", res.StatusCode)
		default:
			n.Status = storage.StatusSent
		}
	}

	ok := n.Status == storage.StatusSent
	if ok {
		out.Sent++
	} else {
		out.Failed++
		out.Errors = append(out.Errors, tmpl+": "+n.Error)
		d.logger.Error("email send failed", "template", tmpl, "aggregate_id", aggregateID, "provider", n.Provider, "status_code", n.StatusCode, "err", n.Error)
	}
	d.metrics.ObserveEmail(tmpl, n.Provider, ok)

	// The email is already out; a lost log row must not cause a resend.
	if err := d.recorder.Insert(ctx, n); err != nil {
		d.logger.Error("failed to persist notification", "err", err, "template", tmpl, "aggregate_id", aggregateID)
	}
	return ok
}
