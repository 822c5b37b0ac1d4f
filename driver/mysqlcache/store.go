package mysqlcache

import (
	_ "github.com/go-sql-driver/mysql"

	"github.com/loadkit/loadable/driver/sqlcore"
	"github.com/loadkit/loadable/loadcore"
)

// Config configures a mysql-backed store.
type Config struct {
	loadcore.BaseConfig
	DSN   string
	Table string
}

// New builds a mysql-backed loadcore.Store.
func New(cfg Config) (loadcore.Store, error) {
	return sqlcore.New(sqlcore.Config{
		BaseConfig: cfg.BaseConfig,
		DriverName: "mysql",
		DSN:        cfg.DSN,
		Table:      cfg.Table,
	})
}
