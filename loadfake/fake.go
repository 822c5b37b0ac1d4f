// Package loadfake provides deterministic test doubles for loadable
// consumers: an op-counting in-memory store and a scripted remote source.
// No external services are needed.
package loadfake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/loadkit/loadable"
	"github.com/loadkit/loadable/loadcore"
)

// Op identifies a store operation for assertions.
type Op string

const (
	OpGet    Op = "get"
	OpSet    Op = "set"
	OpHas    Op = "has"
	OpDelete Op = "delete"
	OpFlush  Op = "flush"
)

// Fake exposes an in-memory store plus assertion helpers for tests.
type Fake struct {
	store  *countingStore
	mu     sync.Mutex
	counts map[Op]map[string]int
}

// New creates a Fake backed by the in-process store.
func New() *Fake {
	f := &Fake{counts: make(map[Op]map[string]int)}
	f.store = &countingStore{
		inner:   loadable.NewMemoryStore(context.Background()),
		onCount: f.record,
	}
	return f
}

// Store returns the store to inject into code under test.
func (f *Fake) Store() loadcore.Store { return f.store }

// FailWith makes every subsequent store call return err; nil restores normal
// behaviour.
func (f *Fake) FailWith(err error) {
	f.store.mu.Lock()
	f.store.err = err
	f.store.mu.Unlock()
}

// Reset clears recorded counts.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = make(map[Op]map[string]int)
}

// AssertCalled verifies key was touched by op the expected number of times.
func (f *Fake) AssertCalled(t *testing.T, op Op, key string, times int) {
	t.Helper()
	if got := f.Count(op, key); got != times {
		t.Fatalf("expected %s %q called %d times, got %d", op, key, times, got)
	}
}

// AssertNotCalled ensures key was never touched by op.
func (f *Fake) AssertNotCalled(t *testing.T, op Op, key string) {
	t.Helper()
	if got := f.Count(op, key); got != 0 {
		t.Fatalf("expected %s %q not called, got %d", op, key, got)
	}
}

// AssertTotal ensures the total call count for an op matches times.
func (f *Fake) AssertTotal(t *testing.T, op Op, times int) {
	t.Helper()
	if got := f.Total(op); got != times {
		t.Fatalf("expected %s total=%d, got %d", op, times, got)
	}
}

// Count returns calls for op+key.
func (f *Fake) Count(op Op, key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[op] == nil {
		return 0
	}
	return f.counts[op][key]
}

// Total returns total calls for an op across keys.
func (f *Fake) Total(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int
	for _, v := range f.counts[op] {
		sum += v
	}
	return sum
}

func (f *Fake) record(op Op, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[op] == nil {
		f.counts[op] = make(map[string]int)
	}
	f.counts[op][key]++
}

// countingStore wraps a Store to record calls and optionally inject errors.
type countingStore struct {
	inner   loadcore.Store
	onCount func(Op, string)

	mu  sync.Mutex
	err error
}

func (s *countingStore) forced() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *countingStore) Driver() loadcore.Driver { return s.inner.Driver() }

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.onCount(OpGet, key)
	if err := s.forced(); err != nil {
		return nil, false, err
	}
	return s.inner.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.onCount(OpSet, key)
	if err := s.forced(); err != nil {
		return err
	}
	return s.inner.Set(ctx, key, value, ttl)
}

func (s *countingStore) Has(ctx context.Context, key string) (bool, error) {
	s.onCount(OpHas, key)
	if err := s.forced(); err != nil {
		return false, err
	}
	return s.inner.Has(ctx, key)
}

func (s *countingStore) Delete(ctx context.Context, key string) error {
	s.onCount(OpDelete, key)
	if err := s.forced(); err != nil {
		return err
	}
	return s.inner.Delete(ctx, key)
}

func (s *countingStore) Flush(ctx context.Context) error {
	s.onCount(OpFlush, "")
	if err := s.forced(); err != nil {
		return err
	}
	return s.inner.Flush(ctx)
}
