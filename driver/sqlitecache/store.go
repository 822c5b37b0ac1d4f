package sqlitecache

import (
	_ "modernc.org/sqlite"

	"github.com/loadkit/loadable/driver/sqlcore"
	"github.com/loadkit/loadable/loadcore"
)

// Config configures a sqlite-backed store.
type Config struct {
	loadcore.BaseConfig
	DSN   string
	Table string
}

// New builds a sqlite-backed loadcore.Store.
func New(cfg Config) (loadcore.Store, error) {
	return sqlcore.New(sqlcore.Config{
		BaseConfig: cfg.BaseConfig,
		DriverName: "sqlite",
		DSN:        cfg.DSN,
		Table:      cfg.Table,
	})
}
