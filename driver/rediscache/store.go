package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loadkit/loadable/loadcore"
)

const (
	defaultTTL    = 24 * time.Hour
	defaultPrefix = "loadable"
)

// Client captures the subset of redis.Client used by the store.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Config configures a redis-backed store.
type Config struct {
	loadcore.BaseConfig
	Client Client
}

type store struct {
	client     Client
	defaultTTL time.Duration
	prefix     string
}

// New builds a redis-backed loadcore.Store.
//
// Defaults:
// - DefaultTTL: 24h when zero
// - Prefix: "loadable" when empty
// - Client: nil allowed (operations return errors until a client is provided)
//
// Example: explicit redis driver config
//
//	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
//	store := rediscache.New(rediscache.Config{
//		BaseConfig: loadcore.BaseConfig{Prefix: "countries"},
//		Client:     rdb,
//	})
//	fmt.Println(store.Driver()) // redis
func New(cfg Config) loadcore.Store {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &store{
		client:     cfg.Client,
		defaultTTL: ttl,
		prefix:     prefix,
	}
}

var errNoClient = errors.New("redis store client unavailable")

func (s *store) Driver() loadcore.Driver { return loadcore.DriverRedis }

func (s *store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, errNoClient
	}
	value, err := s.client.Get(ctx, s.storeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.client == nil {
		return errNoClient
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	return s.client.Set(ctx, s.storeKey(key), value, ttl).Err()
}

func (s *store) Has(ctx context.Context, key string) (bool, error) {
	if s.client == nil {
		return false, errNoClient
	}
	n, err := s.client.Exists(ctx, s.storeKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return errNoClient
	}
	return s.client.Del(ctx, s.storeKey(key)).Err()
}

// Flush removes every key under this store's prefix; other tenants of the
// same redis instance are untouched.
func (s *store) Flush(ctx context.Context) error {
	if s.client == nil {
		return errNoClient
	}
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *store) storeKey(key string) string {
	return s.prefix + ":" + key
}
