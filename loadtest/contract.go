package loadtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/loadkit/loadable/loadcore"
)

// Options configures shared store contract checks.
type Options struct {
	// CaseName is used to namespace keys. Defaults to t.Name().
	CaseName string
	// NullSemantics enables relaxed expectations for the null store.
	NullSemantics bool
	// SkipCloneCheck disables the "get returns a cloned value" assertion.
	SkipCloneCheck bool
	// TTL controls the expiry duration used in TTL tests.
	TTL time.Duration
	// TTLWait is how long the harness waits for expiry to occur.
	TTLWait time.Duration
	// SkipFlush disables the flush assertion for drivers where it is
	// expensive or unavailable.
	SkipFlush bool
}

// Store is the contract required by RunStoreContract.
type Store = loadcore.Store

// RunStoreContract runs a backend-agnostic store contract suite.
func RunStoreContract(t *testing.T, store Store, opts Options) {
	t.Helper()

	caseName := opts.CaseName
	if caseName == "" {
		caseName = t.Name()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 50 * time.Millisecond
	}
	wait := opts.TTLWait
	if wait <= 0 {
		wait = 120 * time.Millisecond
	}

	ctx := context.Background()
	key := func(s string) string {
		return sanitize(caseName) + ":" + s
	}

	// Set/Get round-trip.
	if err := store.Set(ctx, key("alpha"), []byte("value"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	body, ok, err := store.Get(ctx, key("alpha"))
	if err != nil {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if opts.NullSemantics {
		if ok {
			t.Fatalf("expected miss for null semantics")
		}
	} else {
		if !ok || string(body) != "value" {
			t.Fatalf("unexpected get result: ok=%v body=%q err=%v", ok, string(body), err)
		}
		if !opts.SkipCloneCheck {
			body[0] = 'X'
			body2, ok2, err2 := store.Get(ctx, key("alpha"))
			if err2 != nil || !ok2 || string(body2) != "value" {
				t.Fatalf("expected stored value unchanged, got ok=%v body=%q err=%v", ok2, string(body2), err2)
			}
		}
	}

	// Has mirrors Get presence.
	has, err := store.Has(ctx, key("alpha"))
	if err != nil {
		t.Fatalf("has failed: %v", err)
	}
	if opts.NullSemantics {
		if has {
			t.Fatalf("expected null-like has to report false")
		}
	} else if !has {
		t.Fatalf("expected has=true for stored key")
	}
	has, err = store.Has(ctx, key("missing"))
	if err != nil {
		t.Fatalf("has missing failed: %v", err)
	}
	if has {
		t.Fatalf("expected has=false for missing key")
	}

	// TTL expiry.
	if !opts.NullSemantics {
		if err := store.Set(ctx, key("ttl"), []byte("v"), ttl); err != nil {
			t.Fatalf("set ttl failed: %v", err)
		}
		if err := waitForMiss(ctx, store, key("ttl"), wait); err != nil {
			t.Fatalf("expected ttl expiry: %v", err)
		}
	}

	// Delete.
	if err := store.Set(ctx, key("gone"), []byte("1"), time.Second); err != nil {
		t.Fatalf("set gone failed: %v", err)
	}
	if err := store.Delete(ctx, key("gone")); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, ok, err = store.Get(ctx, key("gone"))
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if ok {
		t.Fatalf("expected miss after delete")
	}

	// Flush.
	if !opts.SkipFlush {
		if err := store.Set(ctx, key("flushed"), []byte("1"), time.Second); err != nil {
			t.Fatalf("set flushed failed: %v", err)
		}
		if err := store.Flush(ctx); err != nil {
			t.Fatalf("flush failed: %v", err)
		}
		_, ok, err = store.Get(ctx, key("flushed"))
		if err != nil {
			t.Fatalf("get after flush failed: %v", err)
		}
		if ok {
			t.Fatalf("expected miss after flush")
		}
	}
}

func waitForMiss(ctx context.Context, store Store, key string, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		_, ok, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("key %q still present after %v", key, wait)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func sanitize(name string) string {
	replacer := strings.NewReplacer("/", "_", " ", "_")
	return replacer.Replace(name)
}
