package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bbuddy-otp/internal/domain"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, retention time.Duration) (*OTPStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewOTPStore(client, "otp:", retention), mr
}

func TestOTPStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Hour)
	exp := time.Now().Add(10 * time.Minute)
	rec := &domain.OTPRecord{ID: "01J", Email: "a@x.com", Code: "123456", ExpiresAt: exp.UnixMilli(), CreatedAt: 42}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	assert.True(t, mr.Exists("otp:a@x.com"))
	ttl := mr.TTL("otp:a@x.com")
	assert.Greater(t, ttl, time.Hour)
	assert.LessOrEqual(t, ttl, time.Hour+10*time.Minute)
}

func TestOTPStore_GetMissing(t *testing.T) {
	s, _ := newTestStore(t, 0)
	_, err := s.Get(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)
	exp := time.Now().Add(time.Minute).UnixMilli()
	require.NoError(t, s.Save(ctx, &domain.OTPRecord{ID: "1", Email: "a@x.com", Code: "111111", ExpiresAt: exp}))
	require.NoError(t, s.Save(ctx, &domain.OTPRecord{ID: "2", Email: "a@x.com", Code: "222222", ExpiresAt: exp}))

	got, err := s.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "2", got.ID)
	assert.Equal(t, "222222", got.Code)
}

func TestOTPStore_DeleteIfCode(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, 0)
	exp := time.Now().Add(time.Minute).UnixMilli()
	require.NoError(t, s.Save(ctx, &domain.OTPRecord{ID: "1", Email: "a@x.com", Code: "111111", ExpiresAt: exp}))

	assert.ErrorIs(t, s.DeleteIfCode(ctx, "a@x.com", "999999"), domain.ErrNotFound)
	assert.True(t, mr.Exists("otp:a@x.com"))

	require.NoError(t, s.DeleteIfCode(ctx, "a@x.com", "111111"))
	assert.False(t, mr.Exists("otp:a@x.com"))
	assert.ErrorIs(t, s.DeleteIfCode(ctx, "a@x.com", "111111"), domain.ErrNotFound)
}

func TestOTPStore_DefaultRetention(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, 0)
	require.NoError(t, s.Save(ctx, &domain.OTPRecord{ID: "1", Email: "a@x.com", Code: "111111", ExpiresAt: time.Now().UnixMilli()}))

	ttl := mr.TTL("otp:a@x.com")
	assert.Greater(t, ttl, DefaultRetention-time.Minute)
	assert.LessOrEqual(t, ttl, DefaultRetention)
}

func TestOTPStore_KeyEvictedAfterRetention(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, time.Minute)
	require.NoError(t, s.Save(ctx, &domain.OTPRecord{ID: "1", Email: "a@x.com", Code: "111111", ExpiresAt: time.Now().UnixMilli()}))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOTPStore_GetCorruptFields(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, 0)

	mr.HSet("otp:a@x.com", "id", "1", "code", "111111", "expires_at", "1700000000000", "created_at", "yesterday")
	_, err := s.Get(ctx, "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "created_at")

	mr.HSet("otp:b@x.com", "id", "2", "code", "222222", "expires_at", "soon", "created_at", "1")
	_, err = s.Get(ctx, "b@x.com")
	assert.ErrorContains(t, err, "expires_at")
}
