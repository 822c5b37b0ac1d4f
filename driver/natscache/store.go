package natscache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/loadkit/loadable/loadcore"
)

const (
	defaultTTL    = 24 * time.Hour
	defaultPrefix = "loadable"
)

// KeyValue captures the subset of nats.KeyValue used by the store.
type KeyValue interface {
	Get(key string) (nats.KeyValueEntry, error)
	Put(key string, value []byte) (uint64, error)
	Purge(key string, opts ...nats.DeleteOpt) error
	ListKeys(opts ...nats.WatchOpt) (nats.KeyLister, error)
}

// Config configures a NATS JetStream KeyValue-backed store.
type Config struct {
	loadcore.BaseConfig
	KeyValue KeyValue
}

// envelope carries the value plus its expiry, since KV buckets have no
// per-key TTL.
type envelope struct {
	Value     []byte `json:"v"`
	ExpiresAt int64  `json:"ea"`
}

type store struct {
	kv          KeyValue
	defaultTTL  time.Duration
	scopePrefix string
}

// New builds a NATS-backed loadcore.Store.
//
// Defaults:
// - DefaultTTL: 24h when zero
// - Prefix: "loadable" when empty
// - KeyValue: nil allowed (operations return errors until a bucket is provided)
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
		kv:          cfg.KeyValue,
		defaultTTL:  ttl,
		scopePrefix: "p." + encodeKeyPart(prefix) + ".k.",
	}
}

var errNoBucket = errors.New("nats store key-value unavailable")

func (s *store) Driver() loadcore.Driver { return loadcore.DriverNATS }

func (s *store) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.kv == nil {
		return nil, false, errNoBucket
	}
	entry, err := s.kv.Get(s.storeKey(key))
	if isMiss(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.Operation() == nats.KeyValueDelete || entry.Operation() == nats.KeyValuePurge {
		return nil, false, nil
	}
	var env envelope
	if err := json.Unmarshal(entry.Value(), &env); err != nil {
		return nil, false, err
	}
	if time.Now().UnixMilli() > env.ExpiresAt {
		_ = s.kv.Purge(s.storeKey(key))
		return nil, false, nil
	}
	return env.Value, true, nil
}

func (s *store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.kv == nil {
		return errNoBucket
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	body, err := json.Marshal(envelope{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl).UnixMilli(),
	})
	if err != nil {
		return err
	}
	_, err = s.kv.Put(s.storeKey(key), body)
	return err
}

func (s *store) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *store) Delete(_ context.Context, key string) error {
	if s.kv == nil {
		return errNoBucket
	}
	err := s.kv.Purge(s.storeKey(key))
	if isMiss(err) {
		return nil
	}
	return err
}

// Flush purges every key under this store's scope; other buckets tenants are
// untouched.
func (s *store) Flush(_ context.Context) error {
	if s.kv == nil {
		return errNoBucket
	}
	lister, err := s.kv.ListKeys()
	if err != nil {
		return err
	}
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, s.scopePrefix) {
			continue
		}
		if err := s.kv.Purge(key); err != nil && !isMiss(err) {
			return err
		}
	}
	return nil
}

// storeKey flattens arbitrary keys into the restricted NATS key charset.
func (s *store) storeKey(key string) string {
	return s.scopePrefix + encodeKeyPart(key)
}

func encodeKeyPart(part string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(part))
}

func isMiss(err error) bool {
	return errors.Is(err, nats.ErrKeyNotFound) || errors.Is(err, nats.ErrKeyDeleted)
}
