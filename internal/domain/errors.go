package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrExpired    = errors.New("expired")
	ErrMismatch   = errors.New("mismatch")
	ErrDelivery   = errors.New("delivery failed")
)

// OTPError carries the user-facing message for a failed OTP operation.
// It matches its Kind and its cause with errors.Is.
type OTPError struct {
	Kind    error
	Message string
	Err     error
}

func (e *OTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OTPError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Cause returns the underlying error text, or "" when there is none.
func (e *OTPError) Cause() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

var (
	ErrEmailRequired       = &OTPError{Kind: ErrValidation, Message: "Email is required"}
	ErrEmailAndOTPRequired = &OTPError{Kind: ErrValidation, Message: "Email and OTP are required"}
	ErrOTPNotFound         = &OTPError{Kind: ErrNotFound, Message: "No OTP found for this email. Please request a new one."}
	ErrOTPExpired          = &OTPError{Kind: ErrExpired, Message: "OTP has expired. Please request a new one."}
	ErrOTPMismatch         = &OTPError{Kind: ErrMismatch, Message: "Invalid OTP. Please try again."}
)

// NewDeliveryError wraps a mail provider failure.
func NewDeliveryError(err error) *OTPError {
	return &OTPError{Kind: ErrDelivery, Message: "Failed to send OTP", Err: err}
}

// WithCause returns a copy of e wrapping err, keeping its kind and message.
func (e *OTPError) WithCause(err error) *OTPError {
	return &OTPError{Kind: e.Kind, Message: e.Message, Err: err}
}
