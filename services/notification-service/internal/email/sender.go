package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

// Message is one outbound HTML email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Result is the provider's answer. Body is kept for the notifications log.
type Result struct {
	StatusCode int
	Body       string
}

func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
	Provider() string
}

// From is the envelope sender shared by every implementation.
type From struct {
	Address string
	Name    string
}

func (f From) normalized() From {
	f.Address = strings.TrimSpace(f.Address)
	f.Name = strings.TrimSpace(f.Name)
	if f.Address == "" {
		f.Address = "no-reply@equitylawandco.com"
	}
	if f.Name == "" {
		f.Name = "Equity Law & Co"
	}
	return f
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("email: recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email: subject is required")
	}
	return nil
}

// SMTPSender sends email via unauthenticated SMTP (Mailpit-compatible).
type SMTPSender struct {
	addr string
	from From
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host string, port string, from From) *SMTPSender {
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%s", strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from.normalized(),
		send: smtp.SendMail,
	}
}

func (s *SMTPSender) Provider() string { return "smtp" }

// Send hands the message to the relay. smtp.SendMail has no context, so ctx
// is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	raw := buildMessage(s.from, msg, time.Now())
	if err := s.send(s.addr, nil, s.from.Address, []string{msg.To}, []byte(raw)); err != nil {
		return Result{}, err
	}
	return Result{StatusCode: 250, Body: "queued"}, nil
}

func buildMessage(from From, msg Message, now time.Time) string {
	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.ToName), msg.To)
	}
	// Minimal RFC 5322 message; enough for Mailpit and most SMTP relays.
	return fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nDate: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n",
		mime.QEncoding.Encode("utf-8", from.Name),
		from.Address,
		to,
		mime.QEncoding.Encode("utf-8", msg.Subject),
		now.UTC().Format(time.RFC1123Z),
		msg.HTML,
	)
}

// LogSender writes messages to the logger instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Provider() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg Message) (Result, error) {
	if err := msg.validate(); err != nil {
		return Result{}, err
	}
	s.logger.Info("email (log provider)", "to", msg.To, "subject", msg.Subject, "html_bytes", len(msg.HTML))
	return Result{StatusCode: 202, Body: "logged"}, nil
}
