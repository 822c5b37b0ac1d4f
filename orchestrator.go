package loadable

import (
	"context"
	"iter"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

// LocalStore is the persistence collaborator for one entity domain. E is the
// list entry type, D the detail record type; the orchestrator treats both as
// opaque.
type LocalStore[E, D any] interface {
	HasEntities(ctx context.Context) (bool, error)
	StoreEntities(ctx context.Context, entities []E) error
	QueryEntities(ctx context.Context, search string, locale language.Tag) (iter.Seq[E], error)
	Details(ctx context.Context, key string) (D, bool, error)
	StoreDetails(ctx context.Context, key string, details D) error
}

// RemoteSource fetches the same entity domain over the network.
type RemoteSource[E, D any] interface {
	FetchList(ctx context.Context) ([]E, error)
	FetchDetails(ctx context.Context, key string) (D, error)
}

// Loader is the composed consumer-facing contract. Orchestrator implements
// it for real; NullOrchestrator implements it as a no-op for previews and
// consumer tests.
type Loader[E, D any] interface {
	Load(group *Group, sink *Subject[iter.Seq[E]], search string, locale language.Tag)
	LoadDetails(group *Group, sink *Subject[D], key string)
	Refresh(ctx context.Context) error
	TriggerRefresh(group *Group) <-chan error
}

// DefaultRefreshFloor is the minimum perceived duration of a remote refresh.
// It pads fast responses so consumers do not see an instantaneous flash of
// the loading state; it is a lower bound only, never a deadline.
const DefaultRefreshFloor = 500 * time.Millisecond

type settings struct {
	floor    time.Duration
	observer Observer
	coalesce bool
}

// Option configures an Orchestrator.
type Option func(*settings)

// WithRefreshFloor overrides the minimum refresh duration. Zero disables the
// floor entirely; tests pass zero explicitly.
func WithRefreshFloor(d time.Duration) Option {
	return func(s *settings) { s.floor = d }
}

// WithObserver attaches an observer to receive operation events.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}

// WithCoalescing dedupes concurrent identical remote fetches: one in-flight
// fetch per descriptor, fanned out to every waiting pipeline.
func WithCoalescing() Option {
	return func(s *settings) { s.coalesce = true }
}

// Orchestrator composes a LocalStore and a RemoteSource into loadable
// pipelines: list queries, detail queries and standalone refreshes. Each
// call runs one pipeline whose steps execute strictly in order; the first
// collaborator error short-circuits the pipeline into a Failed sink state.
type Orchestrator[E, D any] struct {
	local    LocalStore[E, D]
	remote   RemoteSource[E, D]
	floor    time.Duration
	observer Observer
	coalesce bool
	flight   singleflight.Group
}

// New creates an orchestrator bound to its two collaborators.
//
// Example: list pipeline
//
//	orch := loadable.New(repo, client)
//	group := loadable.NewGroup()
//	defer group.Close()
//	sink := loadable.NewSubject[iter.Seq[Country]]()
//	orch.Load(group, sink, "swe", language.English)
func New[E, D any](local LocalStore[E, D], remote RemoteSource[E, D], opts ...Option) *Orchestrator[E, D] {
	s := settings{floor: DefaultRefreshFloor}
	for _, opt := range opts {
		opt(&s)
	}
	return &Orchestrator[E, D]{
		local:    local,
		remote:   remote,
		floor:    s.floor,
		observer: s.observer,
		coalesce: s.coalesce,
	}
}

// Load runs the list pipeline: mark sink loading, ensure the local store is
// populated (fetching remotely only when it is not), query matching entities
// and publish them as a restartable lazy sequence. Fire-and-forget; progress
// is observed through the sink, cancellation through the group.
func (o *Orchestrator[E, D]) Load(group *Group, sink *Subject[iter.Seq[E]], search string, locale language.Tag) {
	ctx, token := NewToken(context.Background())
	sink.SetLoading(group, token)
	go func() {
		defer group.discard(token)
		start := time.Now()
		seq, hit, err := o.runList(ctx, search, locale)
		o.observe(ctx, "load_list", search, hit, err, start)
		if err != nil {
			if IsCancellation(err) {
				return
			}
			token.finish(func() { sink.Fail(err) })
			return
		}
		token.finish(func() { sink.Resolve(seq) })
	}()
}

func (o *Orchestrator[E, D]) runList(ctx context.Context, search string, locale language.Tag) (iter.Seq[E], bool, error) {
	loaded, err := o.local.HasEntities(ctx)
	if err != nil {
		return nil, false, err
	}
	if !loaded {
		if err := o.refreshEntities(ctx); err != nil {
			return nil, false, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, loaded, err
	}
	seq, err := o.local.QueryEntities(ctx, search, locale)
	if err != nil {
		return nil, loaded, err
	}
	return seq, loaded, nil
}

// LoadDetails runs the detail pipeline for one entity key. A cache hit is
// served without touching the remote source; a miss fetches, pads to the
// refresh floor, writes back and publishes the fetched record.
func (o *Orchestrator[E, D]) LoadDetails(group *Group, sink *Subject[D], key string) {
	ctx, token := NewToken(context.Background())
	sink.SetLoading(group, token)
	go func() {
		defer group.discard(token)
		start := time.Now()
		details, hit, err := o.runDetails(ctx, key)
		o.observe(ctx, "load_details", key, hit, err, start)
		if err != nil {
			if IsCancellation(err) {
				return
			}
			token.finish(func() { sink.Fail(err) })
			return
		}
		token.finish(func() { sink.Resolve(details) })
	}()
}

func (o *Orchestrator[E, D]) runDetails(ctx context.Context, key string) (D, bool, error) {
	var zero D
	cached, ok, err := o.local.Details(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if ok {
		return cached, true, nil
	}
	start := time.Now()
	fetched, err := o.fetchDetails(ctx, key)
	if err != nil {
		return zero, false, err
	}
	if err := o.padToFloor(ctx, start); err != nil {
		return zero, false, err
	}
	if err := o.local.StoreDetails(ctx, key, fetched); err != nil {
		return zero, false, err
	}
	return fetched, false, nil
}

// Refresh populates the local store from the remote source unless it already
// holds the entity set. Independently callable; Load uses the same path for
// its conditional fetch.
func (o *Orchestrator[E, D]) Refresh(ctx context.Context) error {
	start := time.Now()
	loaded, err := o.local.HasEntities(ctx)
	if err != nil {
		o.observe(ctx, "refresh", "", false, err, start)
		return err
	}
	if loaded {
		o.observe(ctx, "refresh", "", true, nil, start)
		return nil
	}
	err = o.refreshEntities(ctx)
	o.observe(ctx, "refresh", "", false, err, start)
	return err
}

// TriggerRefresh runs Refresh on its own pipeline and reports completion on
// the returned channel. A cancelled refresh never delivers; the channel is
// buffered so nobody has to drain it.
func (o *Orchestrator[E, D]) TriggerRefresh(group *Group) <-chan error {
	ctx, token := NewToken(context.Background())
	group.Store(token)
	done := make(chan error, 1)
	go func() {
		defer group.discard(token)
		err := o.Refresh(ctx)
		if err != nil && IsCancellation(err) {
			return
		}
		token.finish(func() { done <- err })
	}()
	return done
}

// refreshEntities fetches the full entity list, pads the perceived duration
// to the floor, then writes the list back. A failed fetch guarantees the
// store is never written.
func (o *Orchestrator[E, D]) refreshEntities(ctx context.Context) error {
	start := time.Now()
	list, err := o.fetchList(ctx)
	if err != nil {
		return err
	}
	if err := o.padToFloor(ctx, start); err != nil {
		return err
	}
	return o.local.StoreEntities(ctx, list)
}

// fetchList runs the remote list fetch, deduplicated across concurrent
// pipelines when coalescing is on. The shared flight runs on a context
// detached from any single caller so one pipeline's cancellation never fails
// the waiters; each caller decides cancellation from its own context.
func (o *Orchestrator[E, D]) fetchList(ctx context.Context) ([]E, error) {
	if !o.coalesce {
		return o.remote.FetchList(ctx)
	}
	ch := o.flight.DoChan("list", func() (any, error) {
		return o.remote.FetchList(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]E), nil
	}
}

func (o *Orchestrator[E, D]) fetchDetails(ctx context.Context, key string) (D, error) {
	if !o.coalesce {
		return o.remote.FetchDetails(ctx, key)
	}
	ch := o.flight.DoChan("details:"+key, func() (any, error) {
		return o.remote.FetchDetails(context.WithoutCancel(ctx), key)
	})
	var zero D
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(D), nil
	}
}

// padToFloor blocks until at least the configured floor has elapsed since
// start, honouring cancellation while waiting. A fetch slower than the floor
// is never delayed further.
func (o *Orchestrator[E, D]) padToFloor(ctx context.Context, start time.Time) error {
	remaining := o.floor - time.Since(start)
	if remaining <= 0 {
		return nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator[E, D]) observe(ctx context.Context, op, descriptor string, hit bool, err error, start time.Time) {
	if o.observer == nil {
		return
	}
	o.observer.OnLoadOp(ctx, op, descriptor, hit, err, time.Since(start))
}

var _ Loader[any, any] = (*Orchestrator[any, any])(nil)
