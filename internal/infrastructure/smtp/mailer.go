package smtp

import (
	"context"
	"time"

	"github.com/bbuddy-otp/internal/config"
	"github.com/bbuddy-otp/internal/domain"
	gomail "gopkg.in/mail.v2"
)

// Mailer sends multipart text/HTML email through an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
}

func NewMailer(cfg *config.Config) *Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	d.Timeout = 10 * time.Second
	return &Mailer{dialer: d}
}

func (m *Mailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(buildMessage(msg))
}

func buildMessage(msg domain.EmailMessage) *gomail.Message {
	message := gomail.NewMessage()
	message.SetAddressHeader("From", msg.From, msg.FromName)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	if msg.RequestID != "" {
		message.SetHeader("X-OTP-ID", msg.RequestID)
	}
	message.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		message.AddAlternative("text/html", msg.HTML)
	}
	return message
}
