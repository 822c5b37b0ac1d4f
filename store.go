package loadable

import "github.com/loadkit/loadable/loadcore"

// Store re-exports the byte store contract so most callers only import the
// root package.
type Store = loadcore.Store

// Driver re-exports the backend identifier.
type Driver = loadcore.Driver

const (
	DriverNull   = loadcore.DriverNull
	DriverMemory = loadcore.DriverMemory
	DriverRedis  = loadcore.DriverRedis
	DriverNATS   = loadcore.DriverNATS
	DriverDynamo = loadcore.DriverDynamo
	DriverSQL    = loadcore.DriverSQL
)
