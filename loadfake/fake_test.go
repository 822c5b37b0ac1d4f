package loadfake

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFakeCountsStoreOps(t *testing.T) {
	fake := New()
	store := fake.Store()
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, err := store.Has(ctx, "k"); err != nil {
		t.Fatalf("has failed: %v", err)
	}

	fake.AssertCalled(t, OpSet, "k", 1)
	fake.AssertCalled(t, OpGet, "k", 1)
	fake.AssertCalled(t, OpHas, "k", 1)
	fake.AssertNotCalled(t, OpDelete, "k")
	fake.AssertTotal(t, OpSet, 1)

	fake.Reset()
	fake.AssertNotCalled(t, OpSet, "k")
}

func TestFakeFailWithForcesErrors(t *testing.T) {
	fake := New()
	store := fake.Store()
	ctx := context.Background()

	boom := errors.New("injected")
	fake.FailWith(boom)
	if err := store.Set(ctx, "k", []byte("v"), time.Minute); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}

	fake.FailWith(nil)
	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}

func TestScriptedSourceCountsAndFails(t *testing.T) {
	src := NewSource[string, int]()
	ctx := context.Background()

	src.SetList([]string{"a", "b"})
	list, err := src.FetchList(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("fetch list: %v %v", list, err)
	}
	src.AssertListCalls(t, 1)

	src.SetDetails("a", 7)
	got, err := src.FetchDetails(ctx, "a")
	if err != nil || got != 7 {
		t.Fatalf("fetch details: %d %v", got, err)
	}
	src.AssertDetailCalls(t, "a", 1)

	if _, err := src.FetchDetails(ctx, "missing"); err == nil {
		t.Fatal("expected error for unscripted key")
	}

	boom := errors.New("down")
	src.FailList(boom)
	if _, err := src.FetchList(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected scripted failure, got %v", err)
	}
}

func TestScriptedSourceHoldBlocksUntilRelease(t *testing.T) {
	src := NewSource[string, int]()
	src.SetList([]string{"a"})
	src.Hold()

	done := make(chan error, 1)
	go func() {
		_, err := src.FetchList(context.Background())
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("fetch completed while held")
	case <-time.After(30 * time.Millisecond):
	}

	src.Release()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("fetch failed after release: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never completed after release")
	}
}

func TestScriptedSourceHonoursCancellation(t *testing.T) {
	src := NewSource[string, int]()
	src.SetList([]string{"a"})
	src.Hold()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := src.FetchList(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("held fetch ignored cancellation")
	}
}
