package loadable

import "sync"

// Subject is an observable mutable slot holding the current State of one
// logical query. Observers are notified synchronously on every transition.
// A Subject is owned by a single consumer; transitions come from the
// orchestrator pipeline that the consumer started.
type Subject[T any] struct {
	mu        sync.Mutex
	state     State[T]
	observers map[uint64]binding[T]
	nextID    uint64
}

type binding[T any] struct {
	alive  func() bool
	notify func(State[T])
}

// NewSubject creates a subject in the NotRequested state.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{state: NotRequested[T]()}
}

// State returns the current state snapshot.
func (s *Subject[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called on every transition. The returned
// function removes the observer.
func (s *Subject[T]) Subscribe(fn func(State[T])) func() {
	return s.observe(nil, fn)
}

// Bind registers fn with a liveness check. The observer holds no owning
// reference to its target: once alive reports false the binding is dropped
// and fn is never called again.
func (s *Subject[T]) Bind(alive func() bool, fn func(State[T])) {
	s.observe(alive, fn)
}

func (s *Subject[T]) observe(alive func() bool, fn func(State[T])) func() {
	s.mu.Lock()
	if s.observers == nil {
		s.observers = make(map[uint64]binding[T])
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = binding[T]{alive: alive, notify: fn}
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// SetLoading transitions to Loading, carrying the previous Loaded value when
// there is one, and registers the pipeline token with group. State never
// self-transitions: this is the only way back into Loading from a terminal
// state.
func (s *Subject[T]) SetLoading(group *Group, token *Token) {
	group.Store(token)
	s.mu.Lock()
	var prev *T
	if s.state.phase == PhaseLoaded {
		value := s.state.value
		prev = &value
	}
	s.apply(Loading(prev))
}

// Resolve transitions to Loaded. Called exactly once per pipeline execution
// by the pipeline's completion callback.
func (s *Subject[T]) Resolve(value T) {
	s.mu.Lock()
	s.apply(Loaded(value))
}

// Fail transitions to Failed with the collaborator error forwarded verbatim.
func (s *Subject[T]) Fail(err error) {
	s.mu.Lock()
	s.apply(Failed[T](err))
}

// apply publishes next while holding the lock, then notifies observers after
// releasing it so an observer may read State() or unsubscribe.
func (s *Subject[T]) apply(next State[T]) {
	s.state = next
	notify := make([]func(State[T]), 0, len(s.observers))
	for id, b := range s.observers {
		if b.alive != nil && !b.alive() {
			delete(s.observers, id)
			continue
		}
		notify = append(notify, b.notify)
	}
	s.mu.Unlock()
	for _, fn := range notify {
		fn(next)
	}
}
