package loadable

import (
	"context"
	"iter"

	"golang.org/x/text/language"
)

// NullOrchestrator satisfies Loader without touching collaborators or sinks.
// Load and LoadDetails never transition the sink; Refresh completes
// immediately. Useful for previews and for testing consumers with no network
// or disk behind them.
type NullOrchestrator[E, D any] struct{}

// NewNullOrchestrator creates the no-op Loader.
func NewNullOrchestrator[E, D any]() *NullOrchestrator[E, D] {
	return &NullOrchestrator[E, D]{}
}

func (*NullOrchestrator[E, D]) Load(*Group, *Subject[iter.Seq[E]], string, language.Tag) {}

func (*NullOrchestrator[E, D]) LoadDetails(*Group, *Subject[D], string) {}

func (*NullOrchestrator[E, D]) Refresh(context.Context) error { return nil }

func (*NullOrchestrator[E, D]) TriggerRefresh(*Group) <-chan error {
	done := make(chan error, 1)
	done <- nil
	return done
}

var _ Loader[any, any] = (*NullOrchestrator[any, any])(nil)
