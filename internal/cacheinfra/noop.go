package cacheinfra

import (
	"context"
	"time"
)

// NoopBackend never stores anything. Every read is a miss.
type NoopBackend struct{}

// Get always reports ErrMiss.
func (NoopBackend) Get(ctx context.Context, key string) ([]byte, error) { return nil, ErrMiss }

// Set discards value.
func (NoopBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (NoopBackend) Delete(ctx context.Context, key string) error { return nil }

// Close does nothing.
func (NoopBackend) Close() error { return nil }
