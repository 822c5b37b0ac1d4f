package loadable

import (
	"context"
	"errors"
	"testing"
)

func TestSubjectStartsNotRequested(t *testing.T) {
	s := NewSubject[string]()
	if got := s.State().Phase(); got != PhaseNotRequested {
		t.Fatalf("unexpected initial phase: %v", got)
	}
}

func TestSubjectNotifiesOnEveryTransition(t *testing.T) {
	s := NewSubject[string]()
	var phases []Phase
	s.Subscribe(func(state State[string]) {
		phases = append(phases, state.Phase())
	})

	group := NewGroup()
	defer group.Close()
	_, token := NewToken(context.Background())
	s.SetLoading(group, token)
	s.Resolve("hello")
	s.Fail(errors.New("boom"))

	want := []Phase{PhaseLoading, PhaseLoaded, PhaseFailed}
	if len(phases) != len(want) {
		t.Fatalf("unexpected transitions: %v", phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("transition %d: expected %v, got %v", i, want[i], phases[i])
		}
	}
}

func TestSubjectLoadingCarriesLastLoadedValue(t *testing.T) {
	s := NewSubject[string]()
	group := NewGroup()
	defer group.Close()

	_, first := NewToken(context.Background())
	s.SetLoading(group, first)
	if _, ok := s.State().Prev(); ok {
		t.Fatal("first load must not carry a previous value")
	}
	s.Resolve("v1")

	_, second := NewToken(context.Background())
	s.SetLoading(group, second)
	prev, ok := s.State().Prev()
	if !ok || prev != "v1" {
		t.Fatalf("expected prev=v1, got %q ok=%v", prev, ok)
	}
}

func TestSubjectSetLoadingRegistersTokenWithGroup(t *testing.T) {
	s := NewSubject[int]()
	group := NewGroup()
	defer group.Close()

	ctx, token := NewToken(context.Background())
	s.SetLoading(group, token)
	if group.Len() != 1 {
		t.Fatalf("expected token stored in group, got %d", group.Len())
	}

	group.Close()
	select {
	case <-ctx.Done():
	default:
		t.Fatal("closing the group must cancel the pipeline context")
	}
}

func TestSubjectUnsubscribeStopsNotifications(t *testing.T) {
	s := NewSubject[int]()
	var calls int
	cancel := s.Subscribe(func(State[int]) { calls++ })

	s.Resolve(1)
	cancel()
	s.Resolve(2)

	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}
}

func TestSubjectBindDropsDeadObservers(t *testing.T) {
	s := NewSubject[int]()
	alive := true
	var calls int
	s.Bind(func() bool { return alive }, func(State[int]) { calls++ })

	s.Resolve(1)
	alive = false
	s.Resolve(2)
	// The dead binding was pruned; reviving the flag must not resurrect it.
	alive = true
	s.Resolve(3)

	if calls != 1 {
		t.Fatalf("expected 1 notification before death, got %d", calls)
	}
}

func TestSubjectObserverMayReadStateDuringNotification(t *testing.T) {
	s := NewSubject[int]()
	var seen Phase
	s.Subscribe(func(state State[int]) {
		seen = s.State().Phase()
	})
	s.Resolve(1)
	if seen != PhaseLoaded {
		t.Fatalf("observer saw stale phase %v", seen)
	}
}
