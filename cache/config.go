package cache

import (
	"fmt"
	"time"

	"github.com/goliatone/go-students-cache/internal/cacheinfra"
)

// DefaultTTL is the absolute expiration applied to entries unless configured otherwise.
const DefaultTTL = 10 * time.Second

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
	BackendNone   = "none"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend     string
	TTL         time.Duration
	Codec       string
	Namespace   string
	CompactKeys bool
	Memory      MemoryConfig
	Redis       RedisConfig
	Bolt        BoltConfig
}

// MemoryConfig mirrors the sturdyc backend options.
type MemoryConfig struct {
	Capacity           int
	NumShards          int
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BoltConfig holds the bolt file settings.
type BoltConfig struct {
	Path        string
	OpenTimeout time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	mem := cacheinfra.DefaultMemoryConfig()
	return Config{
		Backend:   BackendMemory,
		TTL:       DefaultTTL,
		Codec:     CodecJSON,
		Namespace: "students",
		Memory: MemoryConfig{
			Capacity:           mem.Capacity,
			NumShards:          mem.NumShards,
			EvictionPercentage: mem.EvictionPercentage,
			EvictionInterval:   mem.EvictionInterval,
		},
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return &cacheinfra.ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if _, err := NewCodec(c.Codec); err != nil {
		return &cacheinfra.ConfigError{Field: "Codec", Message: err.Error()}
	}

	switch c.Backend {
	case BackendMemory:
		return c.memoryConfig().Validate()
	case BackendRedis:
		return c.redisConfig().Validate()
	case BackendBolt:
		return c.boltConfig().Validate()
	case BackendNone:
		return nil
	default:
		return &cacheinfra.ConfigError{Field: "Backend", Message: fmt.Sprintf("unknown backend %q", c.Backend)}
	}
}

// NewBackend constructs the backend selected by cfg.Backend.
func NewBackend(cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendMemory:
		backend, err := cacheinfra.NewSturdycBackend(cfg.memoryConfig())
		if err != nil {
			return nil, err
		}
		return backend, nil
	case BackendRedis:
		backend, err := cacheinfra.NewRedisBackend(cfg.redisConfig())
		if err != nil {
			return nil, err
		}
		return backend, nil
	case BackendBolt:
		backend, err := cacheinfra.NewBoltBackend(cfg.boltConfig())
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return cacheinfra.NoopBackend{}, nil
	}
}

// NewKeySerializer builds the key serializer described by cfg.
func NewKeySerializer(cfg Config) KeySerializer {
	opts := []KeyOption{WithNamespace(cfg.Namespace)}
	if cfg.CompactKeys {
		opts = append(opts, WithCompactKeys())
	}
	return NewDefaultKeySerializer(opts...)
}

// memoryConfig sizes sturdyc's own TTL to the configured expiration so entries
// cannot outlive it.
func (c Config) memoryConfig() cacheinfra.MemoryConfig {
	return cacheinfra.MemoryConfig{
		Capacity:           c.Memory.Capacity,
		NumShards:          c.Memory.NumShards,
		MaxTTL:             c.TTL,
		EvictionPercentage: c.Memory.EvictionPercentage,
		EvictionInterval:   c.Memory.EvictionInterval,
	}
}

func (c Config) redisConfig() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

func (c Config) boltConfig() cacheinfra.BoltConfig {
	return cacheinfra.BoltConfig{
		Path:        c.Bolt.Path,
		OpenTimeout: c.Bolt.OpenTimeout,
	}
}
