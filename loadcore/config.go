package loadcore

import "time"

// BaseConfig contains shared, backend-agnostic driver configuration.
type BaseConfig struct {
	// DefaultTTL is used when a call provides ttl <= 0.
	DefaultTTL time.Duration

	// Prefix namespaces keys on shared backends (redis, nats, dynamo, sql).
	Prefix string
}
