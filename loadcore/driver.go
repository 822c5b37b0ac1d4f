package loadcore

// Driver identifies a store backend.
type Driver string

const (
	DriverNull   Driver = "null"
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
	DriverNATS   Driver = "nats"
	DriverDynamo Driver = "dynamodb"
	DriverSQL    Driver = "sql"
)
