package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bbuddy-otp/internal/domain"
	"github.com/patrickmn/go-cache"
)

// Store keeps OTP records in process memory, keyed by email.
//
// With zero retention records live until verified or until a verify attempt
// finds them expired, so memory grows with every email that never verifies.
// A positive retention lets the cache evict a record that long after it
// expires; evictions only happen when the janitor runs (cleanupInterval > 0)
// or on the next read of that key.
type Store struct {
	mu        sync.Mutex // serialises Save against DeleteIfCode
	items     *cache.Cache
	retention time.Duration
}

func NewStore(retention, cleanupInterval time.Duration) *Store {
	return &Store{
		items:     cache.New(cache.NoExpiration, cleanupInterval),
		retention: retention,
	}
}

func (s *Store) Save(_ context.Context, rec *domain.OTPRecord) error {
	if rec == nil || rec.Email == "" {
		return fmt.Errorf("save otp: empty record")
	}
	ttl := cache.NoExpiration
	if s.retention > 0 {
		ttl = time.Until(rec.ExpiresAtTime().Add(s.retention))
		if ttl <= 0 {
			ttl = time.Millisecond
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Set(rec.Email, *rec, ttl)
	return nil
}

func (s *Store) Get(_ context.Context, email string) (*domain.OTPRecord, error) {
	v, ok := s.items.Get(email)
	if !ok {
		return nil, fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	rec := v.(domain.OTPRecord)
	return &rec, nil
}

func (s *Store) DeleteIfCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items.Get(email)
	if !ok || v.(domain.OTPRecord).Code != code {
		return fmt.Errorf("otp for %s: %w", email, domain.ErrNotFound)
	}
	s.items.Delete(email)
	return nil
}

// Len reports the number of records held, including expired ones not yet evicted.
func (s *Store) Len() int {
	return s.items.ItemCount()
}
