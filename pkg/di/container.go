package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-students-cache/cache"
	"github.com/goliatone/go-students-cache/internal/config"
	"github.com/goliatone/go-students-cache/internal/http/handlers/student"
	"github.com/goliatone/go-students-cache/internal/http/middleware"
	"github.com/goliatone/go-students-cache/internal/storage"
	"github.com/goliatone/go-students-cache/studentcache"
)

var (
	_ studentcache.Store = (*storage.StudentStore)(nil)
	_ student.Service    = (*studentcache.Service)(nil)
)

// Container owns the application components built from one configuration:
// the database, the student store, the cache backend and the cached service.
type Container struct {
	config        config.Config
	logger        *slog.Logger
	db            *bun.DB
	store         *storage.StudentStore
	cacheService  *cache.Aside
	keySerializer cache.KeySerializer
	students      *studentcache.Service
}

// NewContainer opens the database and the cache backend described by cfg.
// The schema is not created; call Migrate before serving.
func NewContainer(cfg config.Config, logger *slog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	cacheCfg := cfg.CacheConfig()
	codec, err := cache.NewCodec(cacheCfg.Codec)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	backend, err := cache.NewBackend(cacheCfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("di: cache backend: %w", err)
	}

	store := storage.NewStudentStore(db, logger.With(slog.String("component", "storage")))
	aside := cache.NewAside(backend,
		cache.WithCodec(codec),
		cache.WithLogger(logger.With(slog.String("component", "cache"))))
	keys := cache.NewKeySerializer(cacheCfg)

	return &Container{
		config:        cfg,
		logger:        logger,
		db:            db,
		store:         store,
		cacheService:  aside,
		keySerializer: keys,
		students: studentcache.New(store, aside, keys,
			studentcache.WithTTL(cacheCfg.TTL),
			studentcache.WithLogger(logger.With(slog.String("component", "studentcache")))),
	}, nil
}

// NewContainerWithDefaults builds a container on an in-memory SQLite database
// and the memory cache backend.
func NewContainerWithDefaults() (*Container, error) {
	cfg := config.Default()
	cfg.Storage.DSN = "file::memory:?_foreign_keys=on"
	return NewContainer(cfg, nil)
}

// Migrate creates the schema.
func (c *Container) Migrate(ctx context.Context) error {
	return storage.Migrate(ctx, c.db)
}

// Handler returns the HTTP API with request ids and request logging.
func (c *Container) Handler() http.Handler {
	mux := http.NewServeMux()
	student.Register(mux, c.students, c.logger.With(slog.String("component", "http")))
	return middleware.RequestID(c.logger, mux)
}

// Students returns the cached student service.
func (c *Container) Students() *studentcache.Service {
	return c.students
}

// Store returns the uncached student store.
func (c *Container) Store() *storage.StudentStore {
	return c.store
}

// CacheService returns the cache service shared by all cached components.
func (c *Container) CacheService() *cache.Aside {
	return c.cacheService
}

// KeySerializer returns the key serializer shared by all cached components.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// DB returns the database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

// Close releases the cache backend and the database.
func (c *Container) Close() error {
	return errors.Join(c.cacheService.Close(), c.db.Close())
}
