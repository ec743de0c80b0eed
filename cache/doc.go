// Package cache provides the cache-aside layer used in front of the student store.
//
// # Overview
//
// The package exports:
//
//   - Backend: a byte-valued store with per-key absolute expiration
//   - CacheService / Aside: the fail-open service wrapping a Backend
//   - KeySerializer: builds deterministic keys from an operation tag and operands
//   - Get, Set, GetOrFetch: typed helpers implementing the read-through and
//     write-through patterns
//
// # Basic Usage
//
//	backend, err := cache.NewBackend(cache.DefaultConfig())
//	aside := cache.NewAside(backend, cache.WithCodec(cache.JSONCodec()))
//	keys := cache.NewDefaultKeySerializer(cache.WithNamespace("students"))
//
//	key := keys.SerializeKey(cache.OpRead, int64(42))
//	dto, err := cache.GetOrFetch(ctx, aside, key, cache.DefaultTTL, func(ctx context.Context) (StudentDTO, error) {
//		return store.GetByID(ctx, 42)
//	})
//
// On a hit the fetch function is never called. On a miss it is called once and
// its result is written under the same key; an error from it is returned and
// nothing is cached.
//
// # Expiration
//
// Every entry expires a fixed duration after it was written. The duration is an
// explicit argument of Set and GetOrFetch; there is no package-level default
// applied behind the caller's back. DefaultTTL (10s) is the value used by
// DefaultConfig.
//
// # Key Serialization Strategy
//
// Keys have the shape namespace::operation::operand. The operation tag is one of
// OpRead, OpCreate, OpUpdate or OpDelete and keeps a read and a delete on the
// same id apart. Operands are rendered by reflection:
//
//   - Strings: Go-quoted, so separators inside values cannot collide
//   - Numbers and bools: canonical strconv formatting
//   - Pointers: dereferenced, nil renders as nil
//   - Slices/arrays: recursive, length prefixed
//   - Maps: sorted key=value pairs
//   - Structs: exported fields as Name:value pairs
//
// WithCompactKeys swaps the operand segment for its xxhash digest.
//
// # Failure Policy
//
// Aside never returns errors. A backend failure on read is logged and treated as
// a miss; a failure on write is logged and dropped. Counters for hits, misses and
// each failure class are available through Stats.
package cache
