package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bbuddy-otp/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultRetention bounds how long an unverified record outlives its expiry.
const DefaultRetention = 24 * time.Hour

// deleteIfCode removes KEYS[1] only while its code field equals ARGV[1].
var deleteIfCode = goredis.NewScript(`
if redis.call("HGET", KEYS[1], "code") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OTPStore keeps one hash per email: prefix+email -> {id, code, expires_at, created_at}.
// Keys expire retention after the record does, so expired verifies are still
// reported as expired for that long.
type OTPStore struct {
	client    *goredis.Client
	prefix    string
	retention time.Duration
}

func NewOTPStore(client *goredis.Client, prefix string, retention time.Duration) *OTPStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &OTPStore{client: client, prefix: prefix, retention: retention}
}

func (s *OTPStore) key(email string) string { return s.prefix + email }

func (s *OTPStore) Save(ctx context.Context, rec *domain.OTPRecord) error {
	key := s.key(rec.Email)
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			"id", rec.ID,
			"code", rec.Code,
			"expires_at", rec.ExpiresAt,
			"created_at", rec.CreatedAt,
		)
		p.PExpireAt(ctx, key, rec.ExpiresAtTime().Add(s.retention))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.key(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get otp: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis otp expires_at: %w", err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis otp created_at: %w", err)
	}
	return &domain.OTPRecord{
		ID:        fields["id"],
		Email:     email,
		Code:      fields["code"],
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

func (s *OTPStore) DeleteIfCode(ctx context.Context, email, code string) error {
	n, err := deleteIfCode.Run(ctx, s.client, []string{s.key(email)}, code).Int()
	if err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	return nil
}
