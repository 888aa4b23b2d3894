package email

import (
	"context"
	"errors"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers through the SendGrid v3 mail send API.
type SendGridSender struct {
	client *sendgrid.Client
	from   From
}

func NewSendGridSender(apiKey string, from From) (*SendGridSender, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("email: sendgrid api key is required")
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   from.normalized(),
	}, nil
}

func (s *SendGridSender) Provider() string { return "sendgrid" }

func (s *SendGridSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.validate(); err != nil {
		return Result{}, err
	}
	m := mail.NewSingleEmail(
		mail.NewEmail(s.from.Name, s.from.Address),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		"",
		msg.HTML,
	)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return Result{}, err
	}
	return Result{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
