package sendgrid

import (
	"context"
	"errors"
	"fmt"

	"github.com/bbuddy-otp/internal/config"
	"github.com/bbuddy-otp/internal/domain"
	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendEndpoint = "/v3/mail/send"

// ErrNoAPIKey is returned by Send when no API key was configured.
var ErrNoAPIKey = errors.New("sendgrid: API key is not configured")

// StatusError is a non-2xx response from the SendGrid API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sendgrid: status %d: %s", e.StatusCode, e.Body)
}

// Mailer sends email through the SendGrid v3 mail API.
type Mailer struct {
	apiKey string
	host   string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{apiKey: cfg.SendGridAPIKey, host: cfg.SendGridHost}
}

func (m *Mailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	if m.apiKey == "" {
		return ErrNoAPIKey
	}

	req := sg.GetRequest(m.apiKey, sendEndpoint, m.host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(buildMessage(msg))

	resp, err := sg.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}

func buildMessage(msg domain.EmailMessage) *mail.SGMailV3 {
	from := mail.NewEmail(msg.FromName, msg.From)
	to := mail.NewEmail("", msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	if msg.RequestID != "" && len(m.Personalizations) > 0 {
		m.Personalizations[0].SetCustomArg("otp_id", msg.RequestID)
	}
	return m
}
