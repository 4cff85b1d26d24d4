package domain

import "time"

// OTPRecord is the pending one-time passcode for a single email address.
// ExpiresAt and CreatedAt are Unix milliseconds; dynamo TTL uses the separate TTL attribute.
type OTPRecord struct {
	ID        string `json:"id" dynamodbav:"id"`
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
	TTL       int64  `json:"-" dynamodbav:"ttl,omitempty"` // Unix seconds, dynamo only
}

// Expired reports whether the record is past its expiry at now.
// A record is still valid at exactly ExpiresAt.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.UnixMilli() > r.ExpiresAt
}

// ExpiresAtTime returns ExpiresAt as a time.Time.
func (r *OTPRecord) ExpiresAtTime() time.Time {
	return time.UnixMilli(r.ExpiresAt)
}

// EmailMessage is a rendered message handed to the delivery provider.
type EmailMessage struct {
	To        string
	From      string
	FromName  string
	Subject   string
	Text      string
	HTML      string
	RequestID string
}
