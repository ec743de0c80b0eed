package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Aside is the default CacheService. It is fail-open: a backend failure is
// logged, counted and reported to callers as a miss.
type Aside struct {
	backend Backend
	codec   Codec
	stats   *Stats
	logger  *slog.Logger
}

// AsideOption configures an Aside.
type AsideOption func(*Aside)

// WithCodec sets the payload codec. Defaults to JSON.
func WithCodec(codec Codec) AsideOption {
	return func(a *Aside) {
		if codec != nil {
			a.codec = codec
		}
	}
}

// WithLogger sets the logger used for backend failures.
func WithLogger(logger *slog.Logger) AsideOption {
	return func(a *Aside) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithStats shares a counter set, letting several services report together.
func WithStats(stats *Stats) AsideOption {
	return func(a *Aside) {
		if stats != nil {
			a.stats = stats
		}
	}
}

// NewAside wraps backend.
func NewAside(backend Backend, opts ...AsideOption) *Aside {
	a := &Aside{
		backend: backend,
		codec:   JSONCodec(),
		stats:   NewStats(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ CacheService = (*Aside)(nil)

// Load returns the raw payload for key.
func (a *Aside) Load(ctx context.Context, key string) ([]byte, bool) {
	if Bypassed(ctx) {
		a.stats.Inc(StatBypass)
		return nil, false
	}

	payload, err := a.backend.Get(ctx, key)
	switch {
	case err == nil:
		a.stats.Inc(StatHit)
		return payload, true
	case errors.Is(err, ErrMiss):
		a.stats.Inc(StatMiss)
	default:
		a.stats.Inc(StatGetError)
		a.logger.WarnContext(ctx, "cache get failed, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return nil, false
}

// Store writes payload under key with an absolute expiration of now+ttl.
func (a *Aside) Store(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := a.backend.Set(ctx, key, payload, ttl); err != nil {
		a.stats.Inc(StatSetError)
		a.logger.WarnContext(ctx, "cache set failed",
			slog.String("key", key),
			slog.Duration("ttl", ttl),
			slog.String("error", err.Error()))
		return
	}
	a.stats.Inc(StatSet)
}

// Invalidate removes key.
func (a *Aside) Invalidate(ctx context.Context, key string) {
	if err := a.backend.Delete(ctx, key); err != nil {
		a.stats.Inc(StatDeleteError)
		a.logger.WarnContext(ctx, "cache delete failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	a.stats.Inc(StatInvalidate)
}

// Codec returns the payload codec.
func (a *Aside) Codec() Codec {
	return a.codec
}

// Stats returns the live counters.
func (a *Aside) Stats() *Stats {
	return a.stats
}

// Close releases the backend.
func (a *Aside) Close() error {
	return a.backend.Close()
}

func (a *Aside) codecFailure(ctx context.Context, key string, err error) {
	a.stats.Inc(StatCodecError)
	a.logger.WarnContext(ctx, "cache payload codec failed",
		slog.String("key", key),
		slog.String("codec", a.codec.Name()),
		slog.String("error", err.Error()))
}
