package loadable

// Phase identifies the lifecycle stage of an asynchronously loaded value.
type Phase uint8

const (
	PhaseNotRequested Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

// String reports the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseNotRequested:
		return "not_requested"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of one asynchronous value as observed by a consumer.
// A Loading state may carry the previously loaded value so consumers can keep
// rendering stale data while a refresh is in flight.
type State[T any] struct {
	phase Phase
	value T
	prev  *T
	err   error
}

// NotRequested is the initial state before any pipeline has run.
func NotRequested[T any]() State[T] {
	return State[T]{phase: PhaseNotRequested}
}

// Loading marks an in-flight pipeline. prev, when non-nil, is the
// last-known-good value.
func Loading[T any](prev *T) State[T] {
	return State[T]{phase: PhaseLoading, prev: prev}
}

// Loaded wraps a successfully resolved value.
func Loaded[T any](value T) State[T] {
	return State[T]{phase: PhaseLoaded, value: value}
}

// Failed wraps a terminal pipeline error.
func Failed[T any](err error) State[T] {
	return State[T]{phase: PhaseFailed, err: err}
}

// Phase reports the lifecycle stage.
func (s State[T]) Phase() Phase { return s.phase }

// Value returns the loaded value when the state is Loaded.
func (s State[T]) Value() (T, bool) {
	if s.phase != PhaseLoaded {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Prev returns the last-known-good value carried by a Loading state.
func (s State[T]) Prev() (T, bool) {
	if s.phase != PhaseLoading || s.prev == nil {
		var zero T
		return zero, false
	}
	return *s.prev, true
}

// Err returns the error carried by a Failed state, nil otherwise.
func (s State[T]) Err() error {
	if s.phase != PhaseFailed {
		return nil
	}
	return s.err
}
