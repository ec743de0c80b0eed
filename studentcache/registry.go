package studentcache

import (
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type trackedKey struct {
	key       string
	expiresAt time.Time
}

// keyRegistry tracks the write keys that produced each student id. Keys are
// kept only as long as the cache entries they name, and a sweep at most once
// per ttl drops ids whose keys have all expired.
type keyRegistry struct {
	keys      *xsync.MapOf[int64, []trackedKey]
	ttl       time.Duration
	now       func() time.Time
	nextSweep atomic.Int64
}

func newKeyRegistry(ttl time.Duration, now func() time.Time) *keyRegistry {
	if now == nil {
		now = time.Now
	}
	return &keyRegistry{
		keys: xsync.NewMapOf[int64, []trackedKey](),
		ttl:  ttl,
		now:  now,
	}
}

func (r *keyRegistry) track(id int64, key string) {
	now := r.now()
	r.sweep(now)

	expiresAt := now.Add(r.ttl)
	r.keys.Compute(id, func(old []trackedKey, loaded bool) ([]trackedKey, bool) {
		next := make([]trackedKey, 0, len(old)+1)
		for _, tracked := range old {
			if tracked.key == key || !now.Before(tracked.expiresAt) {
				continue
			}
			next = append(next, tracked)
		}
		return append(next, trackedKey{key: key, expiresAt: expiresAt}), false
	})
}

// drain returns and forgets the unexpired keys recorded for id.
func (r *keyRegistry) drain(id int64) []string {
	tracked, _ := r.keys.LoadAndDelete(id)
	now := r.now()

	var keys []string
	for _, t := range tracked {
		if now.Before(t.expiresAt) {
			keys = append(keys, t.key)
		}
	}
	return keys
}

func (r *keyRegistry) sweep(now time.Time) {
	next := r.nextSweep.Load()
	if now.UnixNano() < next {
		return
	}
	if !r.nextSweep.CompareAndSwap(next, now.Add(r.ttl).UnixNano()) {
		return
	}
	r.prune(now)
}

// prune drops every expired key and the ids left without keys.
func (r *keyRegistry) prune(now time.Time) {
	var ids []int64
	r.keys.Range(func(id int64, _ []trackedKey) bool {
		ids = append(ids, id)
		return true
	})

	for _, id := range ids {
		r.keys.Compute(id, func(old []trackedKey, loaded bool) ([]trackedKey, bool) {
			live := old[:0:0]
			for _, tracked := range old {
				if now.Before(tracked.expiresAt) {
					live = append(live, tracked)
				}
			}
			return live, len(live) == 0
		})
	}
}

func (r *keyRegistry) size() int {
	return r.keys.Size()
}
