package cache

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Stat names recorded by Aside.
const (
	StatHit         = "hit"
	StatMiss        = "miss"
	StatSet         = "set"
	StatInvalidate  = "invalidate"
	StatBypass      = "bypass"
	StatGetError    = "get_error"
	StatSetError    = "set_error"
	StatDeleteError = "delete_error"
	StatCodecError  = "codec_error"
)

// Stats holds concurrent counters keyed by name.
type Stats struct {
	counters *xsync.MapOf[string, *xsync.Counter]
}

// NewStats returns an empty counter set.
func NewStats() *Stats {
	return &Stats{counters: xsync.NewMapOf[string, *xsync.Counter]()}
}

// Inc increments the named counter, creating it on first use.
func (s *Stats) Inc(name string) {
	counter, _ := s.counters.LoadOrCompute(name, func() *xsync.Counter {
		return xsync.NewCounter()
	})
	counter.Inc()
}

// Value returns the current value of the named counter.
func (s *Stats) Value(name string) int64 {
	counter, ok := s.counters.Load(name)
	if !ok {
		return 0
	}
	return counter.Value()
}

// Snapshot returns all counters as a string-keyed map.
func (s *Stats) Snapshot() map[string]int64 {
	out := make(map[string]int64, s.counters.Size())
	s.counters.Range(func(name string, counter *xsync.Counter) bool {
		out[name] = counter.Value()
		return true
	})
	return out
}
