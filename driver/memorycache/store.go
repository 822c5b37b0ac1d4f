package memorycache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/loadkit/loadable/loadcore"
)

const (
	defaultTTL             = 24 * time.Hour
	defaultCleanupInterval = 10 * time.Minute
)

// Config configures an in-process store.
type Config struct {
	loadcore.BaseConfig
	CleanupInterval time.Duration
}

type store struct {
	cache      *gocache.Cache
	defaultTTL time.Duration
}

// New builds an in-process loadcore.Store. Values are cloned on the way in
// and out so callers cannot mutate cached bytes.
func New(cfg Config) loadcore.Store {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultCleanupInterval
	}
	return &store{
		cache:      gocache.New(ttl, cleanup),
		defaultTTL: ttl,
	}
}

func (s *store) Driver() loadcore.Driver { return loadcore.DriverMemory }

func (s *store) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	body, ok := item.([]byte)
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(body), true, nil
}

func (s *store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.cache.Set(key, cloneBytes(value), ttl)
	return nil
}

func (s *store) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.cache.Get(key)
	return ok, nil
}

func (s *store) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *store) Flush(context.Context) error {
	s.cache.Flush()
	return nil
}

func cloneBytes(body []byte) []byte {
	clone := make([]byte, len(body))
	copy(clone, body)
	return clone
}
