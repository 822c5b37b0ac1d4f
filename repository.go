package loadable

import (
	"context"
	"encoding/json"
	"iter"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/loadkit/loadable/loadcore"
)

const (
	defaultListKey      = "entities"
	defaultDetailPrefix = "details"
)

// RepositoryConfig controls how a Repository maps one entity domain onto a
// byte store.
type RepositoryConfig[E any] struct {
	// ListKey and DetailPrefix namespace the stored blobs. Defaults:
	// "entities" and "details".
	ListKey      string
	DetailPrefix string

	// ListTTL / DetailTTL are passed through to the store; zero means the
	// store default applies.
	ListTTL   time.Duration
	DetailTTL time.Duration

	// SearchText extracts the matchable text of an entity. When nil every
	// entity matches every search.
	SearchText func(E) string
}

// Repository adapts a loadcore.Store to the typed LocalStore contract. The
// full entity list is stored as one JSON blob under ListKey; detail records
// are stored per key under DetailPrefix. Any store error surfaces to the
// pipeline as a StorageError.
type Repository[E, D any] struct {
	store        loadcore.Store
	listKey      string
	detailPrefix string
	listTTL      time.Duration
	detailTTL    time.Duration
	searchText   func(E) string
}

// NewRepository binds a byte store to an entity domain.
//
// Example: countries over an in-process store
//
//	store := loadable.NewMemoryStore(ctx)
//	repo := loadable.NewRepository[Country, Details](store, loadable.RepositoryConfig[Country]{
//		SearchText: func(c Country) string { return c.Name },
//	})
func NewRepository[E, D any](store loadcore.Store, cfg RepositoryConfig[E]) *Repository[E, D] {
	listKey := cfg.ListKey
	if listKey == "" {
		listKey = defaultListKey
	}
	detailPrefix := cfg.DetailPrefix
	if detailPrefix == "" {
		detailPrefix = defaultDetailPrefix
	}
	return &Repository[E, D]{
		store:        store,
		listKey:      listKey,
		detailPrefix: detailPrefix,
		listTTL:      cfg.ListTTL,
		detailTTL:    cfg.DetailTTL,
		searchText:   cfg.SearchText,
	}
}

// Store returns the underlying byte store.
func (r *Repository[E, D]) Store() loadcore.Store { return r.store }

// HasEntities reports whether the entity list has been loaded locally.
func (r *Repository[E, D]) HasEntities(ctx context.Context) (bool, error) {
	ok, err := r.store.Has(ctx, r.listKey)
	if err != nil {
		return false, &StorageError{Err: err}
	}
	return ok, nil
}

// StoreEntities replaces the locally cached entity list. Concurrent writers
// race last-write-wins at the store boundary.
func (r *Repository[E, D]) StoreEntities(ctx context.Context, entities []E) error {
	body, err := json.Marshal(entities)
	if err != nil {
		return &StorageError{Err: err}
	}
	if err := r.store.Set(ctx, r.listKey, body, r.listTTL); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// QueryEntities returns a restartable lazy sequence over the cached list:
// decoding happens once per call, filtering happens per iteration. Matching
// is substring with locale-aware case mapping, so e.g. Turkish dotted and
// dotless i compare correctly under language.Turkish.
func (r *Repository[E, D]) QueryEntities(ctx context.Context, search string, locale language.Tag) (iter.Seq[E], error) {
	body, ok, err := r.store.Get(ctx, r.listKey)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	if !ok {
		return func(func(E) bool) {}, nil
	}
	var entities []E
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, &StorageError{Err: err}
	}
	newMatcher := r.matcher(search, locale)
	return func(yield func(E) bool) {
		match := newMatcher()
		for _, entity := range entities {
			if !match(entity) {
				continue
			}
			if !yield(entity) {
				return
			}
		}
	}, nil
}

// matcher returns a constructor so each iteration of the sequence gets its
// own cases.Caser; a Caser is stateful and must not be shared across
// goroutines iterating the same sequence.
func (r *Repository[E, D]) matcher(search string, locale language.Tag) func() func(E) bool {
	if search == "" || r.searchText == nil {
		return func() func(E) bool {
			return func(E) bool { return true }
		}
	}
	needle := cases.Lower(locale).String(search)
	return func() func(E) bool {
		lower := cases.Lower(locale)
		return func(entity E) bool {
			return strings.Contains(lower.String(r.searchText(entity)), needle)
		}
	}
}

// Details returns the cached detail record for key when present.
func (r *Repository[E, D]) Details(ctx context.Context, key string) (D, bool, error) {
	var zero D
	body, ok, err := r.store.Get(ctx, r.detailKey(key))
	if err != nil {
		return zero, false, &StorageError{Err: err}
	}
	if !ok {
		return zero, false, nil
	}
	var out D
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, false, &StorageError{Err: err}
	}
	return out, true, nil
}

// StoreDetails caches the detail record for key.
func (r *Repository[E, D]) StoreDetails(ctx context.Context, key string, details D) error {
	body, err := json.Marshal(details)
	if err != nil {
		return &StorageError{Err: err}
	}
	if err := r.store.Set(ctx, r.detailKey(key), body, r.detailTTL); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

// Clear drops everything the repository cached, forcing the next pipeline to
// refresh from the remote source.
func (r *Repository[E, D]) Clear(ctx context.Context) error {
	if err := r.store.Flush(ctx); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

func (r *Repository[E, D]) detailKey(key string) string {
	return r.detailPrefix + ":" + key
}

var _ LocalStore[struct{}, struct{}] = (*Repository[struct{}, struct{}])(nil)
