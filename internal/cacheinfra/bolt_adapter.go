package cacheinfra

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketEntries = []byte("entries")

// expiryHeaderSize is the width of the big-endian unix-nano expiry stored in
// front of every payload.
const expiryHeaderSize = 8

// BoltBackend keeps entries in a local bolt file so they survive restarts.
// Expired entries are removed lazily on read.
type BoltBackend struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBoltBackend opens (or creates) the bolt database at cfg.Path.
func NewBoltBackend(cfg BoltConfig) (*BoltBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}

	timeout := cfg.OpenTimeout
	if timeout == 0 {
		timeout = time.Second
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltBackend{db: db, now: time.Now}, nil
}

// Get returns the payload stored under key, or ErrMiss.
func (b *BoltBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		payload []byte
		expired bool
	)

	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketEntries).Get([]byte(key))
		if len(raw) < expiryHeaderSize {
			return nil
		}
		expiresAt := time.Unix(0, int64(binary.BigEndian.Uint64(raw[:expiryHeaderSize])))
		if !b.now().Before(expiresAt) {
			expired = true
			return nil
		}
		// bolt memory is only valid for the lifetime of the transaction
		payload = append([]byte(nil), raw[expiryHeaderSize:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired {
		if err := b.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrMiss
	}
	if payload == nil {
		return nil, ErrMiss
	}
	return payload, nil
}

// Set stores value under key until now+ttl.
func (b *BoltBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &ConfigError{Field: "ttl", Message: "must be greater than 0"}
	}

	raw := make([]byte, expiryHeaderSize+len(value))
	binary.BigEndian.PutUint64(raw[:expiryHeaderSize], uint64(b.now().Add(ttl).UnixNano()))
	copy(raw[expiryHeaderSize:], value)

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).Put([]byte(key), raw)
	})
}

// Delete removes key.
func (b *BoltBackend) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketEntries).Delete([]byte(key))
	})
}

// Close closes the bolt database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
