package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// BrevoSender posts transactional emails to the Brevo v3 API.
type BrevoSender struct {
	url    string
	apiKey string
	from   From
	client *http.Client
}

func NewBrevoSender(url, apiKey string, from From) *BrevoSender {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultBrevoURL
	}
	return &BrevoSender{
		url:    url,
		apiKey: strings.TrimSpace(apiKey),
		from:   from.normalized(),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (s *BrevoSender) Provider() string { return "brevo" }

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Send returns the provider status and body even for non-2xx answers; only
// transport failures are errors.
func (s *BrevoSender) Send(ctx context.Context, msg Message) (Result, error) {
	if err := msg.validate(); err != nil {
		return Result{}, err
	}
	if s.apiKey == "" {
		return Result{}, errors.New("email: brevo api key is not configured")
	}
	body, err := json.Marshal(brevoRequest{
		Sender:      brevoAddress{Email: s.from.Address, Name: s.from.Name},
		To:          []brevoAddress{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return Result{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}
