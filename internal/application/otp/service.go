package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bbuddy-otp/internal/domain"
	"github.com/bbuddy-otp/internal/pkg/clock"
	"github.com/bbuddy-otp/internal/pkg/emailtmpl"
	"github.com/bbuddy-otp/internal/pkg/id"
	"github.com/bbuddy-otp/internal/pkg/validate"
)

const DefaultTTL = 10 * time.Minute

type IssueRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`

	// OTPNotString marks an otp sent as some other JSON type. It counts as
	// present but never equals a stored code.
	OTPNotString bool `json:"-"`
}

// Store keeps at most one pending record per email.
type Store interface {
	Save(ctx context.Context, rec *domain.OTPRecord) error
	// Get returns domain.ErrNotFound when no record exists.
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	// DeleteIfCode removes the record only while it still holds code,
	// returning domain.ErrNotFound otherwise.
	DeleteIfCode(ctx context.Context, email, code string) error
}

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) error
	Verify(ctx context.Context, req VerifyRequest) error
}

// ServiceDeps groups the collaborators of the OTP service.
// Zero TTL, Clock and Generator fall back to defaults.
type ServiceDeps struct {
	Store     Store
	Mailer    Mailer
	Generator Generator
	Clock     clock.Clocker
	TTL       time.Duration
	From      string
	FromName  string
	LogCodes  bool
}

type service struct {
	store    Store
	mailer   Mailer
	gen      Generator
	clock    clock.Clocker
	ttl      time.Duration
	from     string
	fromName string
	logCodes bool
}

func NewService(d ServiceDeps) Service {
	s := &service{
		store:    d.Store,
		mailer:   d.Mailer,
		gen:      d.Generator,
		clock:    d.Clock,
		ttl:      d.TTL,
		from:     d.From,
		fromName: d.FromName,
		logCodes: d.LogCodes,
	}
	if s.gen == nil {
		s.gen = RandomGenerator{}
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	return s
}

// Issue stores a fresh code for the email, replacing any pending one, and
// mails it. The record is kept even when delivery fails.
func (s *service) Issue(ctx context.Context, req IssueRequest) error {
	if err := validate.Struct(&req); err != nil {
		return invalid(domain.ErrEmailRequired, err)
	}

	now := s.clock.Now()
	rec := &domain.OTPRecord{
		ID:        id.New(),
		Email:     req.Email,
		Code:      s.gen.Generate(),
		ExpiresAt: now.Add(s.ttl).UnixMilli(),
		CreatedAt: now.UnixMilli(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	body, err := emailtmpl.RenderOTP(rec.Code, s.ttl)
	if err != nil {
		return err
	}
	msg := domain.EmailMessage{
		To:        rec.Email,
		From:      s.from,
		FromName:  s.fromName,
		Subject:   body.Subject,
		Text:      body.Text,
		HTML:      body.HTML,
		RequestID: rec.ID,
	}
	// Client disconnects must not abort a send that is already under way.
	if err := s.mailer.Send(context.WithoutCancel(ctx), msg); err != nil {
		slog.Error("otp delivery failed", "email", rec.Email, "otp_id", rec.ID, "err", err)
		return domain.NewDeliveryError(err)
	}

	attrs := []any{"email", rec.Email, "otp_id", rec.ID}
	if s.logCodes {
		attrs = append(attrs, "code", rec.Code)
	}
	slog.Info("otp sent", attrs...)
	return nil
}

// Verify checks otp against the pending record for the email. A match or an
// expired record consumes it; a wrong code leaves it in place.
func (s *service) Verify(ctx context.Context, req VerifyRequest) error {
	if err := validate.Struct(&req); err != nil {
		return invalid(domain.ErrEmailAndOTPRequired, err)
	}

	rec, err := s.store.Get(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}

	if rec.Expired(s.clock.Now()) {
		if err := s.store.DeleteIfCode(ctx, req.Email, rec.Code); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("failed to delete expired otp", "email", req.Email, "otp_id", rec.ID, "err", err)
		}
		return domain.ErrOTPExpired
	}

	if req.OTPNotString || rec.Code != req.OTP {
		slog.Info("invalid otp attempt", "email", req.Email, "otp_id", rec.ID)
		return domain.ErrOTPMismatch
	}

	// A concurrent verify or re-issue may have replaced the record since Get.
	if err := s.store.DeleteIfCode(ctx, req.Email, rec.Code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrOTPNotFound
		}
		return fmt.Errorf("consume otp: %w", err)
	}
	slog.Info("otp verified", "email", req.Email, "otp_id", rec.ID)
	return nil
}

// invalid wraps a request validation failure in the operation's user-facing error.
func invalid(base *domain.OTPError, err error) error {
	var ve *validate.Error
	if errors.As(err, &ve) {
		slog.Debug("otp request rejected", "missing", ve.Missing())
	}
	return base.WithCause(err)
}
