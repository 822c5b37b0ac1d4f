package loadable

import (
	"context"

	"github.com/loadkit/loadable/driver/dynamocache"
	"github.com/loadkit/loadable/driver/memorycache"
	"github.com/loadkit/loadable/driver/natscache"
	"github.com/loadkit/loadable/driver/rediscache"
	"github.com/loadkit/loadable/driver/sqlcore"
	"github.com/loadkit/loadable/loadcore"
)

// NewStore returns a concrete store for the requested driver. Backends whose
// construction can fail return an error-preserving store, so callers always
// get a usable handle that reports the failure on first use.
//
// Example: select driver explicitly
//
//	ctx := context.Background()
//	store := loadable.NewStore(ctx, loadable.StoreConfig{
//		Driver: loadable.DriverMemory,
//	})
//	fmt.Println(store.Driver()) // memory
func NewStore(ctx context.Context, cfg StoreConfig) Store {
	cfg = cfg.withDefaults()
	base := loadcore.BaseConfig{
		DefaultTTL: cfg.DefaultTTL,
		Prefix:     cfg.Prefix,
	}
	switch cfg.Driver {
	case DriverRedis:
		return rediscache.New(rediscache.Config{
			BaseConfig: base,
			Client:     cfg.RedisClient,
		})
	case DriverNATS:
		return natscache.New(natscache.Config{
			BaseConfig: base,
			KeyValue:   cfg.NATSKeyValue,
		})
	case DriverDynamo:
		store, err := dynamocache.New(ctx, dynamocache.Config{
			BaseConfig: base,
			Client:     cfg.DynamoClient,
			Table:      cfg.DynamoTable,
			Region:     cfg.DynamoRegion,
			Endpoint:   cfg.DynamoEndpoint,
		})
		if err != nil {
			return newErrorStore(DriverDynamo, err)
		}
		return store
	case DriverSQL:
		store, err := sqlcore.New(sqlcore.Config{
			BaseConfig: base,
			DriverName: cfg.SQLDriverName,
			DSN:        cfg.SQLDSN,
			Table:      cfg.SQLTable,
		})
		if err != nil {
			return newErrorStore(DriverSQL, err)
		}
		return store
	case DriverNull:
		return newNullStore()
	default:
		return memorycache.New(memorycache.Config{
			BaseConfig:      base,
			CleanupInterval: cfg.MemoryCleanupInterval,
		})
	}
}

// NewStoreWith builds a store using a driver and a set of functional options.
func NewStoreWith(ctx context.Context, driver Driver, opts ...StoreOption) Store {
	cfg := StoreConfig{Driver: driver}
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return NewStore(ctx, cfg)
}

// NewMemoryStore is a convenience for an in-process store.
func NewMemoryStore(ctx context.Context, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverMemory, opts...)
}

// NewNullStore is a convenience for a store that never hits, never fails.
func NewNullStore(ctx context.Context) Store {
	return NewStoreWith(ctx, DriverNull)
}

// NewRedisStore is a convenience for a redis-backed store. Client required.
func NewRedisStore(ctx context.Context, client rediscache.Client, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverRedis, append([]StoreOption{WithRedisClient(client)}, opts...)...)
}

// NewSQLStore is a convenience for a database/sql-backed store; import the
// dialect wrapper (or a database/sql driver) before calling it.
func NewSQLStore(ctx context.Context, driverName, dsn string, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverSQL, append([]StoreOption{WithSQL(driverName, dsn)}, opts...)...)
}
