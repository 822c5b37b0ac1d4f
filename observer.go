package loadable

import (
	"context"
	"time"
)

// Observer receives events for load operations. It is called from the
// orchestrator after each pipeline step group completes, on the pipeline's
// goroutine.
type Observer interface {
	OnLoadOp(ctx context.Context, op string, descriptor string, hit bool, err error, dur time.Duration)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, op string, descriptor string, hit bool, err error, dur time.Duration)

// OnLoadOp implements Observer.
func (f ObserverFunc) OnLoadOp(ctx context.Context, op string, descriptor string, hit bool, err error, dur time.Duration) {
	if f == nil {
		return
	}
	f(ctx, op, descriptor, hit, err, dur)
}
