package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-students-cache/internal/cacheinfra"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TTL != 10*time.Second {
		t.Errorf("expected TTL to be 10 seconds, got %v", cfg.TTL)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %q", cfg.Backend)
	}
	if cfg.Codec != CodecJSON {
		t.Errorf("expected json codec, got %q", cfg.Codec)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"unknown codec", func(c *Config) { c.Codec = "xml" }, "Codec"},
		{"unknown backend", func(c *Config) { c.Backend = "memcached" }, "Backend"},
		{"memory without capacity", func(c *Config) { c.Memory.Capacity = 0 }, "Capacity"},
		{"redis without addr", func(c *Config) { c.Backend = BackendRedis }, "Addr"},
		{"bolt without path", func(c *Config) { c.Backend = BackendBolt }, "Path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var configErr *cacheinfra.ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if configErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, configErr.Field)
			}
		})
	}
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		backend, err := NewBackend(DefaultConfig())
		if err != nil {
			t.Fatalf("NewBackend() failed: %v", err)
		}
		defer backend.Close()

		if err := backend.Set(ctx, "k", []byte("v"), time.Second); err != nil {
			t.Fatalf("Set() failed: %v", err)
		}
		if got, err := backend.Get(ctx, "k"); err != nil || string(got) != "v" {
			t.Errorf("Get() = %q, %v", got, err)
		}
	})

	t.Run("bolt", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backend = BackendBolt
		cfg.Bolt.Path = filepath.Join(t.TempDir(), "cache.db")

		backend, err := NewBackend(cfg)
		if err != nil {
			t.Fatalf("NewBackend() failed: %v", err)
		}
		defer backend.Close()
	})

	t.Run("none always misses", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backend = BackendNone

		backend, err := NewBackend(cfg)
		if err != nil {
			t.Fatalf("NewBackend() failed: %v", err)
		}
		_ = backend.Set(ctx, "k", []byte("v"), time.Second)
		if _, err := backend.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
			t.Errorf("expected ErrMiss, got %v", err)
		}
	})

	t.Run("invalid config returns nil backend", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TTL = 0

		backend, err := NewBackend(cfg)
		if err == nil {
			t.Fatal("expected an error")
		}
		if backend != nil {
			t.Error("expected a nil backend on error")
		}
	})
}

func TestNewCodec(t *testing.T) {
	for _, name := range []string{"", CodecJSON, CodecMsgpack} {
		if _, err := NewCodec(name); err != nil {
			t.Errorf("NewCodec(%q) failed: %v", name, err)
		}
	}
	if _, err := NewCodec("gob"); err == nil {
		t.Error("expected an error for an unknown codec")
	}
}

func TestNewKeySerializer(t *testing.T) {
	cfg := DefaultConfig()
	got := NewKeySerializer(cfg).SerializeKey(OpRead, int64(3))
	if got != joinWithSeparator("students", "read", "3") {
		t.Errorf("unexpected key %q", got)
	}

	cfg.CompactKeys = true
	if got := NewKeySerializer(cfg).SerializeKey(OpRead, int64(3)); got == joinWithSeparator("students", "read", "3") {
		t.Error("compact keys must hash the operand")
	}
}

func TestStats_Snapshot(t *testing.T) {
	stats := NewStats()
	stats.Inc(StatHit)
	stats.Inc(StatHit)
	stats.Inc(StatMiss)

	snap := stats.Snapshot()
	if snap[StatHit] != 2 || snap[StatMiss] != 1 {
		t.Errorf("unexpected snapshot %v", snap)
	}
	if stats.Value("unknown") != 0 {
		t.Error("unknown counters must read as zero")
	}
}
