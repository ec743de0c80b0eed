package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/goliatone/go-students-cache/cache"
	"github.com/goliatone/go-students-cache/internal/storage"
)

// Environments accepted by Config.Env.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// PathEnv names the variable holding the config file path.
const PathEnv = "CONFIG_PATH"

// Config is the application configuration, read from YAML and overridden by
// environment variables.
type Config struct {
	Env        string         `yaml:"env" env:"ENV" env-default:"dev"`
	Storage    storage.Config `yaml:"storage"`
	Cache      Cache          `yaml:"cache"`
	HTTPServer HTTPServer     `yaml:"http_server"`
}

// Cache configures the cache-aside layer.
type Cache struct {
	Backend     string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"memory"`
	TTL         time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"10s"`
	Codec       string        `yaml:"codec" env:"CACHE_CODEC" env-default:"json"`
	Namespace   string        `yaml:"namespace" env:"CACHE_NAMESPACE" env-default:"students"`
	CompactKeys bool          `yaml:"compact_keys" env:"CACHE_COMPACT_KEYS" env-default:"false"`
	Memory      MemoryCache   `yaml:"memory"`
	Redis       RedisCache    `yaml:"redis"`
	Bolt        BoltCache     `yaml:"bolt"`
}

// MemoryCache sizes the in-process sharded cache.
type MemoryCache struct {
	Capacity           int           `yaml:"capacity" env:"CACHE_MEMORY_CAPACITY" env-default:"10000"`
	Shards             int           `yaml:"shards" env:"CACHE_MEMORY_SHARDS" env-default:"64"`
	EvictionPercentage int           `yaml:"eviction_percentage" env:"CACHE_MEMORY_EVICTION_PERCENTAGE" env-default:"10"`
	EvictionInterval   time.Duration `yaml:"eviction_interval" env:"CACHE_MEMORY_EVICTION_INTERVAL" env-default:"0s"`
}

// RedisCache points at the Redis server used when the backend is redis.
type RedisCache struct {
	Addr     string `yaml:"addr" env:"CACHE_REDIS_ADDR"`
	Password string `yaml:"password" env:"CACHE_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"CACHE_REDIS_DB" env-default:"0"`
}

// BoltCache locates the bbolt file used when the backend is bolt.
type BoltCache struct {
	Path        string        `yaml:"path" env:"CACHE_BOLT_PATH" env-default:"storage/cache.db"`
	OpenTimeout time.Duration `yaml:"open_timeout" env:"CACHE_BOLT_OPEN_TIMEOUT" env-default:"1s"`
}

// HTTPServer configures the listener.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Default returns the configuration Load produces from an empty file.
func Default() Config {
	mem := cache.DefaultConfig().Memory
	return Config{
		Env:     EnvDev,
		Storage: storage.Config{Driver: storage.DriverSQLite, DSN: "storage/students.db"},
		Cache: Cache{
			Backend:   cache.BackendMemory,
			TTL:       cache.DefaultTTL,
			Codec:     cache.CodecJSON,
			Namespace: "students",
			Memory: MemoryCache{
				Capacity:           mem.Capacity,
				Shards:             mem.NumShards,
				EvictionPercentage: mem.EvictionPercentage,
			},
			Bolt: BoltCache{Path: "storage/cache.db", OpenTimeout: time.Second},
		},
		HTTPServer: HTTPServer{
			Address:         "localhost:8082",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load reads path, applies environment overrides and validates the result.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	} else {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolvePath returns flagValue, falling back to CONFIG_PATH.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(PathEnv)
}

// Validate checks every section.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Env, validation.Required, validation.In(EnvDev, EnvStaging, EnvProd)),
		validation.Field(&c.Storage),
		validation.Field(&c.Cache, validation.By(func(any) error {
			return c.CacheConfig().Validate()
		})),
		validation.Field(&c.HTTPServer),
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate checks the listener settings.
func (h HTTPServer) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Address, validation.Required),
		validation.Field(&h.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&h.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&h.IdleTimeout, validation.Min(time.Duration(0))),
		validation.Field(&h.ShutdownTimeout, validation.Required),
	)
}

// CacheConfig converts the cache section to the cache package configuration.
func (c Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend:     c.Cache.Backend,
		TTL:         c.Cache.TTL,
		Codec:       c.Cache.Codec,
		Namespace:   c.Cache.Namespace,
		CompactKeys: c.Cache.CompactKeys,
		Memory: cache.MemoryConfig{
			Capacity:           c.Cache.Memory.Capacity,
			NumShards:          c.Cache.Memory.Shards,
			EvictionPercentage: c.Cache.Memory.EvictionPercentage,
			EvictionInterval:   c.Cache.Memory.EvictionInterval,
		},
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
		Bolt: cache.BoltConfig{
			Path:        c.Cache.Bolt.Path,
			OpenTimeout: c.Cache.Bolt.OpenTimeout,
		},
	}
}
