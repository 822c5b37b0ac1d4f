package loadfake

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// Source is a scripted RemoteSource. Responses, failures, latency and a
// blocking gate are all configurable; every call is counted for assertions.
type Source[E, D any] struct {
	mu          sync.Mutex
	list        []E
	details     map[string]D
	listErr     error
	detailErr   error
	latency     time.Duration
	gate        chan struct{}
	listCalls   int
	detailCalls map[string]int
}

// NewSource creates an empty scripted source.
func NewSource[E, D any]() *Source[E, D] {
	return &Source[E, D]{
		details:     make(map[string]D),
		detailCalls: make(map[string]int),
	}
}

// SetList scripts the list response.
func (s *Source[E, D]) SetList(list []E) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
	s.listErr = nil
}

// SetDetails scripts the detail response for key.
func (s *Source[E, D]) SetDetails(key string, details D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[key] = details
	s.detailErr = nil
}

// FailList makes FetchList return err.
func (s *Source[E, D]) FailList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// FailDetails makes FetchDetails return err for every key.
func (s *Source[E, D]) FailDetails(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailErr = err
}

// SetLatency delays every fetch by d, honouring context cancellation.
func (s *Source[E, D]) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Hold blocks every subsequent fetch until Release is called or the fetch
// context is cancelled. Used to test cancellation mid-flight.
func (s *Source[E, D]) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
}

// Release unblocks fetches held by Hold.
func (s *Source[E, D]) Release() {
	s.mu.Lock()
	gate := s.gate
	s.gate = nil
	s.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

// FetchList returns the scripted list.
func (s *Source[E, D]) FetchList(ctx context.Context) ([]E, error) {
	s.mu.Lock()
	s.listCalls++
	list, err := s.list, s.listErr
	latency, gate := s.latency, s.gate
	s.mu.Unlock()
	if waitErr := wait(ctx, latency, gate); waitErr != nil {
		return nil, waitErr
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

// FetchDetails returns the scripted detail record for key.
func (s *Source[E, D]) FetchDetails(ctx context.Context, key string) (D, error) {
	s.mu.Lock()
	s.detailCalls[key]++
	details, ok := s.details[key]
	err := s.detailErr
	latency, gate := s.latency, s.gate
	s.mu.Unlock()
	var zero D
	if waitErr := wait(ctx, latency, gate); waitErr != nil {
		return zero, waitErr
	}
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, fmt.Errorf("no scripted details for %q", key)
	}
	return details, nil
}

// ListCalls reports how many times FetchList ran.
func (s *Source[E, D]) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// DetailCalls reports how many times FetchDetails ran for key.
func (s *Source[E, D]) DetailCalls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailCalls[key]
}

// AssertListCalls verifies the FetchList call count.
func (s *Source[E, D]) AssertListCalls(t *testing.T, times int) {
	t.Helper()
	if got := s.ListCalls(); got != times {
		t.Fatalf("expected %d list fetches, got %d", times, got)
	}
}

// AssertDetailCalls verifies the FetchDetails call count for key.
func (s *Source[E, D]) AssertDetailCalls(t *testing.T, key string, times int) {
	t.Helper()
	if got := s.DetailCalls(key); got != times {
		t.Fatalf("expected %d detail fetches for %q, got %d", times, key, got)
	}
}

func wait(ctx context.Context, latency time.Duration, gate chan struct{}) error {
	if gate != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-gate:
		}
	}
	if latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
