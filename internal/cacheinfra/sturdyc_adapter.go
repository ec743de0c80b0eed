package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// entry carries the absolute expiration next to the payload so each key can
// expire on its own schedule inside a client with a single TTL.
type entry struct {
	payload   []byte
	expiresAt time.Time
}

// SturdycBackend keeps entries in process memory using a sturdyc client.
type SturdycBackend struct {
	client *sturdyc.Client[entry]
	maxTTL time.Duration
	now    func() time.Time
}

// NewSturdycBackend validates cfg and creates the sturdyc client.
func NewSturdycBackend(cfg MemoryConfig) (*SturdycBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.MaxTTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycBackend{client: client, maxTTL: cfg.MaxTTL, now: time.Now}, nil
}

// Get returns the payload stored under key, or ErrMiss.
func (s *SturdycBackend) Get(ctx context.Context, key string) ([]byte, error) {
	e, ok := s.client.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !s.now().Before(e.expiresAt) {
		s.client.Delete(key)
		return nil, ErrMiss
	}
	return e.payload, nil
}

// Set stores value under key until now+ttl. A ttl above MaxTTL is capped.
func (s *SturdycBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &ConfigError{Field: "ttl", Message: "must be greater than 0"}
	}
	if ttl > s.maxTTL {
		ttl = s.maxTTL
	}
	payload := append([]byte(nil), value...)
	s.client.Set(key, entry{payload: payload, expiresAt: s.now().Add(ttl)})
	return nil
}

// Delete removes key.
func (s *SturdycBackend) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Size reports the number of entries held by the client, expired ones included.
func (s *SturdycBackend) Size() int {
	return s.client.Size()
}

// Close is a no-op; sturdyc holds no external resources.
func (s *SturdycBackend) Close() error {
	return nil
}
