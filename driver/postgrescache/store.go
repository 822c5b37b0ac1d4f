package postgrescache

import (
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/loadkit/loadable/driver/sqlcore"
	"github.com/loadkit/loadable/loadcore"
)

// Config configures a postgres-backed store.
type Config struct {
	loadcore.BaseConfig
	DSN   string
	Table string
}

// New builds a postgres-backed loadcore.Store using the pgx stdlib driver.
func New(cfg Config) (loadcore.Store, error) {
	return sqlcore.New(sqlcore.Config{
		BaseConfig: cfg.BaseConfig,
		DriverName: "pgx",
		DSN:        cfg.DSN,
		Table:      cfg.Table,
	})
}
