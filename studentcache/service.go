package studentcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-students-cache/cache"
	"github.com/goliatone/go-students-cache/students"
)

// Store is the persistence contract the service decorates.
type Store interface {
	GetByID(ctx context.Context, id int64) (students.Student, error)
	Add(ctx context.Context, candidate students.Student) (students.Student, error)
	Update(ctx context.Context, student students.Student) (students.Student, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// Service is a cached student service.
type Service struct {
	base     Store
	cache    cache.CacheService
	keys     cache.KeySerializer
	ttl      time.Duration
	logger   *slog.Logger
	registry *keyRegistry
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the expiration of every entry the service writes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Service that fronts base with cacheService.
func New(base Store, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *Service {
	s := &Service{
		base:     base,
		cache:    cacheService,
		keys:     keySerializer,
		ttl:      cache.DefaultTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = newKeyRegistry(s.ttl, time.Now)
	return s
}

// GetByID returns the student stored under id.
func (s *Service) GetByID(ctx context.Context, id int64) (students.StudentDTO, error) {
	key := s.keys.SerializeKey(cache.OpRead, id)
	return cache.GetOrFetch(ctx, s.cache, key, s.ttl, func(ctx context.Context) (students.StudentDTO, error) {
		student, err := s.base.GetByID(ctx, id)
		if err != nil {
			return students.StudentDTO{}, err
		}
		return student.ToDTO(), nil
	})
}

// Add stores dto, or returns the existing student with the same natural key.
func (s *Service) Add(ctx context.Context, dto students.StudentDTO) (students.StudentDTO, error) {
	key := s.keys.SerializeKey(cache.OpCreate, dto)
	if cached, ok := cache.Get[students.StudentDTO](ctx, s.cache, key); ok {
		s.logger.DebugContext(ctx, "create served from cache", slog.Int64("id", cached.ID))
		return cached, nil
	}

	created, err := s.base.Add(ctx, dto.ToModel())
	if err != nil {
		return students.StudentDTO{}, err
	}

	result := created.ToDTO()
	s.writeThrough(ctx, key, result)
	s.registry.track(result.ID, key)
	return result, nil
}

// Update replaces the student identified by dto.ID.
func (s *Service) Update(ctx context.Context, dto students.StudentDTO) (students.StudentDTO, error) {
	key := s.keys.SerializeKey(cache.OpUpdate, dto)
	if cached, ok := cache.Get[students.StudentDTO](ctx, s.cache, key); ok {
		s.logger.DebugContext(ctx, "update served from cache", slog.Int64("id", cached.ID))
		return cached, nil
	}

	updated, err := s.base.Update(ctx, dto.ToModel())
	if err != nil {
		return students.StudentDTO{}, err
	}

	result := updated.ToDTO()
	s.forgetWrites(ctx, result.ID)
	s.writeThrough(ctx, key, result)
	s.registry.track(result.ID, key)
	return result, nil
}

// DeleteByID removes the student stored under id. It reports false when no
// such student exists.
func (s *Service) DeleteByID(ctx context.Context, id int64) (bool, error) {
	key := s.keys.SerializeKey(cache.OpDelete, id)
	if deleted, ok := cache.Get[bool](ctx, s.cache, key); ok && deleted {
		return true, nil
	}

	deleted, err := s.base.DeleteByID(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}

	cache.Set(ctx, s.cache, key, true, s.ttl)
	s.cache.Invalidate(ctx, s.keys.SerializeKey(cache.OpRead, id))
	s.forgetWrites(ctx, id)
	return true, nil
}

// Stats returns the counters of the underlying cache service, if it keeps any.
func (s *Service) Stats() map[string]int64 {
	if reporter, ok := s.cache.(interface{ Stats() *cache.Stats }); ok {
		return reporter.Stats().Snapshot()
	}
	return map[string]int64{}
}

// writeThrough caches result under the write key and refreshes its read entry.
func (s *Service) writeThrough(ctx context.Context, key string, result students.StudentDTO) {
	cache.Set(ctx, s.cache, key, result, s.ttl)
	cache.Set(ctx, s.cache, s.keys.SerializeKey(cache.OpRead, result.ID), result, s.ttl)
}

// forgetWrites invalidates the write entries recorded for id.
func (s *Service) forgetWrites(ctx context.Context, id int64) {
	for _, key := range s.registry.drain(id) {
		s.cache.Invalidate(ctx, key)
	}
}
