package loadable

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/text/language"
)

type city struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type cityDetails struct {
	Code       string `json:"code"`
	Population int    `json:"population"`
}

func newCityRepository(t *testing.T) *Repository[city, cityDetails] {
	t.Helper()
	store := NewMemoryStore(context.Background())
	return NewRepository[city, cityDetails](store, RepositoryConfig[city]{
		ListKey:      "cities",
		DetailPrefix: "city",
		SearchText:   func(c city) string { return c.Name },
	})
}

func TestRepositoryEntityRoundTrip(t *testing.T) {
	repo := newCityRepository(t)
	ctx := context.Background()

	has, err := repo.HasEntities(ctx)
	if err != nil {
		t.Fatalf("has failed: %v", err)
	}
	if has {
		t.Fatal("fresh repository must report no entities")
	}

	cities := []city{
		{Code: "STO", Name: "Stockholm"},
		{Code: "GOT", Name: "Gothenburg"},
		{Code: "MMX", Name: "Malmo"},
	}
	if err := repo.StoreEntities(ctx, cities); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	has, err = repo.HasEntities(ctx)
	if err != nil || !has {
		t.Fatalf("expected entities present, has=%v err=%v", has, err)
	}

	seq, err := repo.QueryEntities(ctx, "", language.English)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	var got []city
	for c := range seq {
		got = append(got, c)
	}
	if len(got) != 3 || got[0].Code != "STO" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestRepositoryQueryFiltersCaseInsensitively(t *testing.T) {
	repo := newCityRepository(t)
	ctx := context.Background()
	if err := repo.StoreEntities(ctx, []city{
		{Code: "STO", Name: "Stockholm"},
		{Code: "GOT", Name: "Gothenburg"},
	}); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	seq, err := repo.QueryEntities(ctx, "STOCK", language.English)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	var got []city
	for c := range seq {
		got = append(got, c)
	}
	if len(got) != 1 || got[0].Code != "STO" {
		t.Fatalf("unexpected filter result: %v", got)
	}
}

func TestRepositoryQueryUsesLocaleCaseMapping(t *testing.T) {
	repo := newCityRepository(t)
	ctx := context.Background()
	if err := repo.StoreEntities(ctx, []city{{Code: "IGD", Name: "Iğdır"}}); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	// Under Turkish case mapping the uppercase dotless I lowers to ı, so the
	// lowercase query matches.
	seq, err := repo.QueryEntities(ctx, "ığdır", language.Turkish)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	var count int
	for range seq {
		count++
	}
	if count != 1 {
		t.Fatalf("expected Turkish-cased match, got %d results", count)
	}
}

func TestRepositoryQuerySequenceIsRestartable(t *testing.T) {
	repo := newCityRepository(t)
	ctx := context.Background()
	if err := repo.StoreEntities(ctx, []city{
		{Code: "STO", Name: "Stockholm"},
		{Code: "GOT", Name: "Gothenburg"},
	}); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	seq, err := repo.QueryEntities(ctx, "", language.English)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	count := func() int {
		var n int
		for range seq {
			n++
		}
		return n
	}
	if first, second := count(), count(); first != 2 || second != 2 {
		t.Fatalf("sequence not restartable: first=%d second=%d", first, second)
	}

	// Early break must not poison later iterations.
	for range seq {
		break
	}
	if got := count(); got != 2 {
		t.Fatalf("sequence broken after partial iteration: %d", got)
	}
}

func TestRepositoryQuerySequenceIterableConcurrently(t *testing.T) {
	repo := newCityRepository(t)
	ctx := context.Background()
	cities := make([]city, 0, 200)
	for i := 0; i < 200; i++ {
		cities = append(cities, city{Code: "STO", Name: "Stockholm"})
	}
	if err := repo.StoreEntities(ctx, cities); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	seq, err := repo.QueryEntities(ctx, "stockholm", language.English)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	// Two goroutines iterate the same restartable sequence at once; each run
	// must case-map independently and see every match.
	var wg sync.WaitGroup
	counts := make([]int, 2)
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range seq {
				counts[i]++
			}
		}(i)
	}
	wg.Wait()
	if counts[0] != 200 || counts[1] != 200 {
		t.Fatalf("concurrent iterations diverged: %v", counts)
	}
}

func TestRepositoryQueryOnEmptyStoreYieldsNothing(t *testing.T) {
	repo := newCityRepository(t)
	seq, err := repo.QueryEntities(context.Background(), "any", language.English)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	for range seq {
		t.Fatal("empty store must yield nothing")
	}
}

func TestRepositoryDetailsRoundTrip(t *testing.T) {
	repo := newCityRepository(t)
	ctx := context.Background()

	_, ok, err := repo.Details(ctx, "STO")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if ok {
		t.Fatal("expected miss before store")
	}

	want := cityDetails{Code: "STO", Population: 984748}
	if err := repo.StoreDetails(ctx, "STO", want); err != nil {
		t.Fatalf("store details failed: %v", err)
	}
	got, ok, err := repo.Details(ctx, "STO")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("unexpected details: %+v", got)
	}
}

func TestRepositoryClearForcesRefetch(t *testing.T) {
	repo := newCityRepository(t)
	ctx := context.Background()
	if err := repo.StoreEntities(ctx, []city{{Code: "STO", Name: "Stockholm"}}); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	has, err := repo.HasEntities(ctx)
	if err != nil {
		t.Fatalf("has failed: %v", err)
	}
	if has {
		t.Fatal("expected no entities after clear")
	}
}

func TestRepositoryWrapsStoreErrors(t *testing.T) {
	cause := errors.New("backend down")
	repo := NewRepository[city, cityDetails](newErrorStore(DriverMemory, cause), RepositoryConfig[city]{})
	ctx := context.Background()

	if _, err := repo.HasEntities(ctx); !isStorageError(err, cause) {
		t.Fatalf("has: expected StorageError wrapping cause, got %v", err)
	}
	if err := repo.StoreEntities(ctx, nil); !isStorageError(err, cause) {
		t.Fatalf("store: expected StorageError wrapping cause, got %v", err)
	}
	if _, err := repo.QueryEntities(ctx, "", language.English); !isStorageError(err, cause) {
		t.Fatalf("query: expected StorageError wrapping cause, got %v", err)
	}
	if _, _, err := repo.Details(ctx, "k"); !isStorageError(err, cause) {
		t.Fatalf("details: expected StorageError wrapping cause, got %v", err)
	}
	if err := repo.StoreDetails(ctx, "k", cityDetails{}); !isStorageError(err, cause) {
		t.Fatalf("store details: expected StorageError wrapping cause, got %v", err)
	}
}

func isStorageError(err, cause error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && errors.Is(err, cause)
}
