package sqlcore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/loadkit/loadable/loadcore"
)

const (
	defaultTTL    = 24 * time.Hour
	defaultPrefix = "loadable"
	defaultTable  = "loadable_entries"
)

// Config configures the shared database/sql-backed store. DriverName must
// match a registered database/sql driver; the dialect wrapper packages take
// care of the registration import.
type Config struct {
	loadcore.BaseConfig
	DriverName string
	DSN        string
	Table      string
}

type store struct {
	db         *sql.DB
	table      string
	driverName string
	prefix     string
	defaultTTL time.Duration

	getStmt    *sql.Stmt
	upsertStmt *sql.Stmt
	hasStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	flushStmt  *sql.Stmt
}

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// New opens the database, bootstraps the schema and prepares statements.
func New(cfg Config) (loadcore.Store, error) {
	if cfg.DriverName == "" || cfg.DSN == "" {
		return nil, errors.New("sql store requires driver name and dsn")
	}
	db, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	if !identRE.MatchString(table) {
		return nil, fmt.Errorf("invalid sql table name %q", table)
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	s := &store{
		db:         db,
		table:      table,
		driverName: cfg.DriverName,
		prefix:     prefix,
		defaultTTL: ttl,
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if err := s.prepareStatements(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *store) Driver() loadcore.Driver { return loadcore.DriverSQL }

func (s *store) ensureSchema() error {
	var stmt string
	switch s.driverName {
	case "postgres", "pgx":
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k TEXT PRIMARY KEY,
			v BYTEA NOT NULL,
			ea BIGINT NOT NULL
		);`, s.table)
	case "mysql":
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k VARBINARY(255) PRIMARY KEY,
			v LONGBLOB NOT NULL,
			ea BIGINT NOT NULL
		) ENGINE=InnoDB;`, s.table)
	default: // sqlite
		stmt = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			k TEXT PRIMARY KEY,
			v BLOB NOT NULL,
			ea INTEGER NOT NULL
		);`, s.table)
	}
	_, err := s.db.Exec(stmt)
	return err
}

func (s *store) prepareStatements() error {
	var upsert string
	switch s.driverName {
	case "postgres", "pgx":
		upsert = fmt.Sprintf(`INSERT INTO %s (k, v, ea) VALUES ($1, $2, $3)
			ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, ea = EXCLUDED.ea`, s.table)
	case "mysql":
		upsert = fmt.Sprintf(`INSERT INTO %s (k, v, ea) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE v = VALUES(v), ea = VALUES(ea)`, s.table)
	default:
		upsert = fmt.Sprintf(`INSERT INTO %s (k, v, ea) VALUES (?, ?, ?)
			ON CONFLICT (k) DO UPDATE SET v = excluded.v, ea = excluded.ea`, s.table)
	}
	statements := []struct {
		target **sql.Stmt
		query  string
	}{
		{&s.getStmt, s.placeholders(fmt.Sprintf(`SELECT v, ea FROM %s WHERE k = ?`, s.table))},
		{&s.upsertStmt, upsert},
		{&s.hasStmt, s.placeholders(fmt.Sprintf(`SELECT ea FROM %s WHERE k = ?`, s.table))},
		{&s.deleteStmt, s.placeholders(fmt.Sprintf(`DELETE FROM %s WHERE k = ?`, s.table))},
		{&s.flushStmt, s.placeholders(fmt.Sprintf(`DELETE FROM %s WHERE k LIKE ?`, s.table))},
	}
	for _, stmt := range statements {
		prepared, err := s.db.Prepare(stmt.query)
		if err != nil {
			return err
		}
		*stmt.target = prepared
	}
	return nil
}

// placeholders rewrites ? markers into $N for postgres drivers.
func (s *store) placeholders(query string) string {
	if s.driverName != "postgres" && s.driverName != "pgx" {
		return query
	}
	var out []byte
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (s *store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	var exp int64
	err := s.getStmt.QueryRowContext(ctx, s.storeKey(key)).Scan(&v, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Now().UnixMilli() > exp {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

func (s *store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	exp := time.Now().Add(ttl).UnixMilli()
	_, err := s.upsertStmt.ExecContext(ctx, s.storeKey(key), value, exp)
	return err
}

func (s *store) Has(ctx context.Context, key string) (bool, error) {
	var exp int64
	err := s.hasStmt.QueryRowContext(ctx, s.storeKey(key)).Scan(&exp)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if time.Now().UnixMilli() > exp {
		_ = s.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	_, err := s.deleteStmt.ExecContext(ctx, s.storeKey(key))
	return err
}

// Flush removes rows under this store's prefix only.
func (s *store) Flush(ctx context.Context) error {
	_, err := s.flushStmt.ExecContext(ctx, s.prefix+":%")
	return err
}

func (s *store) storeKey(key string) string {
	return s.prefix + ":" + key
}

func cloneBytes(body []byte) []byte {
	clone := make([]byte, len(body))
	copy(clone, body)
	return clone
}
