package loadable

import (
	"time"

	"github.com/loadkit/loadable/driver/dynamocache"
	"github.com/loadkit/loadable/driver/natscache"
	"github.com/loadkit/loadable/driver/rediscache"
)

// StoreOption mutates a StoreConfig during construction.
type StoreOption func(StoreConfig) StoreConfig

// WithDefaultTTL overrides the TTL applied when a call provides ttl <= 0.
func WithDefaultTTL(ttl time.Duration) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.DefaultTTL = ttl
		return cfg
	}
}

// WithPrefix namespaces keys on shared backends.
func WithPrefix(prefix string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.Prefix = prefix
		return cfg
	}
}

// WithMemoryCleanupInterval controls in-process store eviction.
func WithMemoryCleanupInterval(interval time.Duration) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.MemoryCleanupInterval = interval
		return cfg
	}
}

// WithRedisClient supplies the client required by DriverRedis.
func WithRedisClient(client rediscache.Client) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.RedisClient = client
		return cfg
	}
}

// WithNATSKeyValue supplies the JetStream bucket required by DriverNATS.
func WithNATSKeyValue(kv natscache.KeyValue) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.NATSKeyValue = kv
		return cfg
	}
}

// WithDynamoClient supplies a prebuilt DynamoDB client.
func WithDynamoClient(client dynamocache.API) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.DynamoClient = client
		return cfg
	}
}

// WithDynamoTable selects the DynamoDB table.
func WithDynamoTable(table string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.DynamoTable = table
		return cfg
	}
}

// WithDynamoEndpoint points the driver at a local or custom endpoint.
func WithDynamoEndpoint(region, endpoint string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.DynamoRegion = region
		cfg.DynamoEndpoint = endpoint
		return cfg
	}
}

// WithSQL selects the database/sql driver and DSN for DriverSQL.
func WithSQL(driverName, dsn string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.SQLDriverName = driverName
		cfg.SQLDSN = dsn
		return cfg
	}
}

// WithSQLTable overrides the table used by DriverSQL.
func WithSQLTable(table string) StoreOption {
	return func(cfg StoreConfig) StoreConfig {
		cfg.SQLTable = table
		return cfg
	}
}
