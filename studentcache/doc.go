// Package studentcache decorates a student store with cache-aside semantics.
//
// # Overview
//
// Service wraps any Store and speaks StudentDTO on both sides. Cached values
// are DTO snapshots encoded by the cache service codec, so a hit never reaches
// the store.
//
// # Caching Behavior
//
// Reads follow the read-through pattern:
//
//  1. Serialize the key (read, id)
//  2. On a hit, return the snapshot
//  3. On a miss, call the store
//  4. Cache the result for the configured TTL
//
// Writes follow the write-through pattern. Add, Update and DeleteByID use their
// own operation tag and the full input as the key, so repeating an identical
// write within the TTL returns the earlier result without touching the store.
// A successful Add or Update also overwrites the read entry of the resulting
// id; a successful delete invalidates it.
//
// Errors are never cached, and DeleteByID only caches a true outcome.
//
// # Stale Writes
//
// The service remembers which write keys produced each student id. When an
// update or delete succeeds, earlier write entries for that id are invalidated
// so a replayed write cannot return a snapshot older than the last one. The
// registry is local to the process; with a shared backend, other processes
// rely on expiry alone.
//
// # Bypass
//
// A context marked with cache.WithBypass skips cache reads for that call. The
// fresh result is still written back.
//
// # Basic Usage
//
//	store := storage.NewStudentStore(db, logger)
//	aside := cache.NewAside(backend, cache.WithLogger(logger))
//	keys := cache.NewDefaultKeySerializer(cache.WithNamespace("students"))
//
//	svc := studentcache.New(store, aside, keys, studentcache.WithTTL(10*time.Second))
//	dto, err := svc.GetByID(ctx, 1)
package studentcache
