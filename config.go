package loadable

import (
	"time"

	"github.com/loadkit/loadable/driver/dynamocache"
	"github.com/loadkit/loadable/driver/natscache"
	"github.com/loadkit/loadable/driver/rediscache"
)

const (
	defaultStorePrefix           = "loadable"
	defaultStoreTTL              = 24 * time.Hour
	defaultMemoryCleanupInterval = 10 * time.Minute
)

// StoreConfig controls how a Store is constructed.
type StoreConfig struct {
	Driver Driver

	// DefaultTTL is used when a call provides ttl <= 0.
	DefaultTTL time.Duration

	// Prefix namespaces keys on shared backends.
	Prefix string

	// MemoryCleanupInterval controls in-process store eviction.
	MemoryCleanupInterval time.Duration

	// RedisClient is required when DriverRedis is used.
	RedisClient rediscache.Client

	// NATSKeyValue is required when DriverNATS is used.
	NATSKeyValue natscache.KeyValue

	// Dynamo settings apply when DriverDynamo is used. A nil client is
	// constructed from Region/Endpoint.
	DynamoClient   dynamocache.API
	DynamoTable    string
	DynamoRegion   string
	DynamoEndpoint string

	// SQL settings apply when DriverSQL is used.
	SQLDriverName string
	SQLDSN        string
	SQLTable      string
}

func (c StoreConfig) withDefaults() StoreConfig {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = defaultStoreTTL
	}
	if c.MemoryCleanupInterval <= 0 {
		c.MemoryCleanupInterval = defaultMemoryCleanupInterval
	}
	if c.Prefix == "" {
		c.Prefix = defaultStorePrefix
	}
	return c
}
