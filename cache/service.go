package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-students-cache/internal/cacheinfra"
)

// ErrMiss is returned by backends when a key is absent or expired.
var ErrMiss = cacheinfra.ErrMiss

// Backend is a byte-valued store with per-key absolute expiration.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// FetchFn is the function signature GetOrFetch expects when reaching the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the byte-level cache-aside operations the typed helpers build on.
// Implementations never fail: backend errors are treated as misses.
type CacheService interface {
	Load(ctx context.Context, key string) ([]byte, bool)
	Store(ctx context.Context, key string, payload []byte, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
	Codec() Codec
}

type bypassContextKey struct{}

// WithBypass marks ctx so Get and GetOrFetch skip cache reads. Successful fetches
// still refresh the entry.
func WithBypass(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, bypassContextKey{}, true)
}

// Bypassed reports whether ctx was marked with WithBypass.
func Bypassed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	bypass, _ := ctx.Value(bypassContextKey{}).(bool)
	return bypass
}

// Get decodes the entry stored under key. The second result is false when the
// entry is absent, expired, undecodable or the backend is unavailable.
func Get[T any](ctx context.Context, service CacheService, key string) (T, bool) {
	var zero T
	payload, ok := service.Load(ctx, key)
	if !ok {
		return zero, false
	}

	var value T
	if err := service.Codec().Unmarshal(payload, &value); err != nil {
		if a, isAside := service.(*Aside); isAside {
			a.codecFailure(ctx, key, err)
		}
		return zero, false
	}
	return value, true
}

// Set encodes value under key for ttl and returns value unchanged.
func Set[T any](ctx context.Context, service CacheService, key string, value T, ttl time.Duration) T {
	payload, err := service.Codec().Marshal(value)
	if err != nil {
		if a, isAside := service.(*Aside); isAside {
			a.codecFailure(ctx, key, err)
		}
		return value
	}
	service.Store(ctx, key, payload, ttl)
	return value
}

// GetOrFetch returns the cached value for key or, on a miss, calls fetchFn and
// caches its result for ttl. Errors from fetchFn are returned and never cached.
func GetOrFetch[T any](ctx context.Context, service CacheService, key string, ttl time.Duration, fetchFn FetchFn[T]) (T, error) {
	if value, ok := Get[T](ctx, service, key); ok {
		return value, nil
	}

	value, err := fetchFn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	return Set(ctx, service, key, value, ttl), nil
}
