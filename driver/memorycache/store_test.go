package memorycache

import (
	"context"
	"testing"
	"time"

	"github.com/loadkit/loadable/loadcore"
	"github.com/loadkit/loadable/loadtest"
)

func TestMemoryStoreContract(t *testing.T) {
	store := New(Config{})
	if store.Driver() != loadcore.DriverMemory {
		t.Fatalf("unexpected driver: %s", store.Driver())
	}
	loadtest.RunStoreContract(t, store, loadtest.Options{})
}

func TestMemoryStoreClonesOnWrite(t *testing.T) {
	store := New(Config{})
	ctx := context.Background()

	value := []byte("original")
	if err := store.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	value[0] = 'X'

	body, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if string(body) != "original" {
		t.Fatalf("caller mutation leaked into the store: %q", string(body))
	}
}

func TestMemoryStoreDefaultTTLApplied(t *testing.T) {
	store := New(Config{
		BaseConfig:      loadcore.BaseConfig{DefaultTTL: 30 * time.Millisecond},
		CleanupInterval: 10 * time.Millisecond,
	})
	ctx := context.Background()
	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		_, ok, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("value never expired under default ttl")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
