package loadable

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Token represents one in-flight pipeline. Cancelling a token aborts the
// pipeline's context and suppresses any later publication to its sink.
// Cancelling a token that already completed is a no-op.
type Token struct {
	id     string
	cancel context.CancelFunc
	owned  atomic.Bool

	mu        sync.Mutex
	cancelled bool
	done      bool
}

// NewToken derives a cancelable context for one pipeline run and the token
// controlling it.
func NewToken(parent context.Context) (context.Context, *Token) {
	ctx, cancel := context.WithCancel(parent)
	return ctx, &Token{id: uuid.NewString(), cancel: cancel}
}

// ID returns the token's unique identity.
func (t *Token) ID() string { return t.id }

// Cancel aborts the pipeline. Idempotent.
func (t *Token) Cancel() {
	t.mu.Lock()
	if t.cancelled || t.done {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	t.mu.Unlock()
	t.cancel()
}

// Cancelled reports whether Cancel won the race against completion.
func (t *Token) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// finish runs fn only when the token was not cancelled, then marks the token
// done. The mutex serializes finish against Cancel: a completion callback
// arriving after cancellation is discarded, never delivered.
func (t *Token) finish(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled || t.done {
		return false
	}
	t.done = true
	fn()
	return true
}

// claim marks the token as owned by a group. A token may belong to at most
// one group.
func (t *Token) claim() bool {
	return t.owned.CompareAndSwap(false, true)
}

// Group owns the tokens of in-flight pipelines started on behalf of one
// logical consumer scope. Closing the group cancels every stored token
// exactly once, typically when the consuming scope goes away.
type Group struct {
	mu     sync.Mutex
	tokens map[string]*Token
	closed bool
}

// NewGroup creates an empty cancellation group.
func NewGroup() *Group {
	return &Group{tokens: make(map[string]*Token)}
}

// Store adds a token to the group. Tokens already owned by another group are
// left untouched. Storing into a closed group cancels the token immediately.
func (g *Group) Store(t *Token) {
	if t == nil || !t.claim() {
		return
	}
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		t.Cancel()
		return
	}
	g.tokens[t.id] = t
	g.mu.Unlock()
}

// Len reports how many tokens the group currently holds.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tokens)
}

// Close cancels every stored token exactly once and clears the set. Stores
// and completion callbacks racing with Close are serialized by the group and
// token mutexes, so tokens are never double-cancelled or lost.
func (g *Group) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	tokens := g.tokens
	g.tokens = make(map[string]*Token)
	g.mu.Unlock()
	for _, t := range tokens {
		t.Cancel()
	}
}

// discard drops a completed token so the group does not accumulate handles
// for pipelines that already finished.
func (g *Group) discard(t *Token) {
	if t == nil {
		return
	}
	g.mu.Lock()
	delete(g.tokens, t.id)
	g.mu.Unlock()
}
