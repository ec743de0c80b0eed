package cache

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"
)

// fakeBackend records calls and can simulate an outage.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []string
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	delErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) getCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Get(ctx context.Context, key string) ([]byte, error) {
	f.record("Get:" + key)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (f *fakeBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.record("Set:" + key)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	f.record("Delete:" + key)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.entries, key)
	return nil
}

func (f *fakeBackend) Close() error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type record struct {
	ID     int64    `json:"id" msgpack:"id"`
	Name   string   `json:"name" msgpack:"name"`
	Scores []int    `json:"scores" msgpack:"scores"`
	Nested *record  `json:"nested,omitempty" msgpack:"nested,omitempty"`
	Tags   []string `json:"tags" msgpack:"tags"`
}

func TestSetGet_RoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSONCodec(), MsgpackCodec()} {
		t.Run(codec.Name(), func(t *testing.T) {
			aside := NewAside(newFakeBackend(), WithCodec(codec), WithLogger(quietLogger()))
			ctx := context.Background()

			value := record{ID: 1, Name: "Ana", Scores: []int{90, 95}, Nested: &record{ID: 2, Name: "Bo"}, Tags: []string{"a"}}

			returned := Set(ctx, aside, "k", value, DefaultTTL)
			if !reflect.DeepEqual(returned, value) {
				t.Errorf("Set() must return its input, got %+v", returned)
			}

			got, ok := Get[record](ctx, aside, "k")
			if !ok {
				t.Fatal("expected a hit after Set")
			}
			if !reflect.DeepEqual(got, value) {
				t.Errorf("Get() = %+v, want %+v", got, value)
			}
		})
	}
}

func TestSet_PassesTTL(t *testing.T) {
	backend := newFakeBackend()
	aside := NewAside(backend, WithLogger(quietLogger()))

	Set(context.Background(), aside, "k", 1, 3*time.Second)

	if backend.ttls["k"] != 3*time.Second {
		t.Errorf("expected ttl 3s to reach the backend, got %v", backend.ttls["k"])
	}
}

func TestGet_Miss(t *testing.T) {
	aside := NewAside(newFakeBackend(), WithLogger(quietLogger()))

	got, ok := Get[record](context.Background(), aside, "missing")
	if ok {
		t.Error("expected a miss")
	}
	if !reflect.DeepEqual(got, record{}) {
		t.Errorf("expected zero value on miss, got %+v", got)
	}
	if aside.Stats().Value(StatMiss) != 1 {
		t.Errorf("expected one miss, got %v", aside.Stats().Snapshot())
	}
}

func TestGet_FailOpen(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("connection refused")

	var logs bytes.Buffer
	aside := NewAside(backend, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	_, ok := Get[int](context.Background(), aside, "k")
	if ok {
		t.Error("a backend failure must be reported as a miss")
	}
	if aside.Stats().Value(StatGetError) != 1 {
		t.Errorf("expected one get error, got %v", aside.Stats().Snapshot())
	}
	if !bytes.Contains(logs.Bytes(), []byte("connection refused")) {
		t.Errorf("expected the failure to be logged, got %q", logs.String())
	}
}

func TestGet_UndecodablePayload(t *testing.T) {
	backend := newFakeBackend()
	backend.entries["k"] = []byte("not json")
	aside := NewAside(backend, WithLogger(quietLogger()))

	if _, ok := Get[record](context.Background(), aside, "k"); ok {
		t.Error("an undecodable payload must be a miss")
	}
	if aside.Stats().Value(StatCodecError) != 1 {
		t.Errorf("expected one codec error, got %v", aside.Stats().Snapshot())
	}
}

func TestSet_FailureIsDropped(t *testing.T) {
	backend := newFakeBackend()
	backend.setErr = errors.New("read only replica")
	aside := NewAside(backend, WithLogger(quietLogger()))

	got := Set(context.Background(), aside, "k", 5, DefaultTTL)
	if got != 5 {
		t.Errorf("Set() must return its input on failure, got %d", got)
	}
	if aside.Stats().Value(StatSetError) != 1 {
		t.Errorf("expected one set error, got %v", aside.Stats().Snapshot())
	}
}

func TestGetOrFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fetches and populates", func(t *testing.T) {
		backend := newFakeBackend()
		aside := NewAside(backend, WithLogger(quietLogger()))

		calls := 0
		fetch := func(ctx context.Context) (record, error) {
			calls++
			return record{ID: 7, Name: "Ana"}, nil
		}

		first, err := GetOrFetch(ctx, aside, "k", DefaultTTL, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch() failed: %v", err)
		}
		second, err := GetOrFetch(ctx, aside, "k", DefaultTTL, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch() failed: %v", err)
		}

		if calls != 1 {
			t.Errorf("expected fetch to run once, ran %d times", calls)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("hit returned %+v, miss returned %+v", second, first)
		}
	})

	t.Run("fetch error is returned and not cached", func(t *testing.T) {
		backend := newFakeBackend()
		aside := NewAside(backend, WithLogger(quietLogger()))
		fetchErr := errors.New("not found")

		_, err := GetOrFetch(ctx, aside, "k", DefaultTTL, func(ctx context.Context) (int, error) {
			return 0, fetchErr
		})
		if !errors.Is(err, fetchErr) {
			t.Errorf("expected fetch error, got %v", err)
		}

		for _, call := range backend.getCalls() {
			if call == "Set:k" {
				t.Error("a failed fetch must not populate the cache")
			}
		}
	})

	t.Run("bypass skips reads but refreshes", func(t *testing.T) {
		backend := newFakeBackend()
		aside := NewAside(backend, WithLogger(quietLogger()))
		Set(ctx, aside, "k", 1, DefaultTTL)

		got, err := GetOrFetch(WithBypass(ctx), aside, "k", DefaultTTL, func(ctx context.Context) (int, error) {
			return 2, nil
		})
		if err != nil {
			t.Fatalf("GetOrFetch() failed: %v", err)
		}
		if got != 2 {
			t.Errorf("expected the fetched value, got %d", got)
		}

		cached, ok := Get[int](ctx, aside, "k")
		if !ok || cached != 2 {
			t.Errorf("expected the entry to be refreshed to 2, got %d (hit=%v)", cached, ok)
		}
		if aside.Stats().Value(StatBypass) != 1 {
			t.Errorf("expected one bypass, got %v", aside.Stats().Snapshot())
		}
	})
}

func TestAside_Invalidate(t *testing.T) {
	backend := newFakeBackend()
	aside := NewAside(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	Set(ctx, aside, "k", 1, DefaultTTL)
	aside.Invalidate(ctx, "k")

	if _, ok := Get[int](ctx, aside, "k"); ok {
		t.Error("expected a miss after Invalidate")
	}

	backend.delErr = errors.New("boom")
	aside.Invalidate(ctx, "k")
	if aside.Stats().Value(StatDeleteError) != 1 {
		t.Errorf("expected one delete error, got %v", aside.Stats().Snapshot())
	}
}

func TestBypassed(t *testing.T) {
	if Bypassed(context.Background()) {
		t.Error("a plain context must not bypass")
	}
	if !Bypassed(WithBypass(context.Background())) {
		t.Error("WithBypass must mark the context")
	}
}
