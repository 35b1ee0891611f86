// Package store is the relational bank store used by the agent tools and the
// back-office surface. It runs on SQLite by default and on Postgres when
// configured.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/schema"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownDriver = errors.New("unknown database driver")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
)

type Config struct {
	Driver       string        `split_words:"true" default:"sqlite"`
	DSN          string        `envconfig:"DSN" default:"app.db"`
	Debug        bool          `split_words:"true" default:"false"`
	MaxOpenConns int           `split_words:"true" default:"10"`
	ConnLifetime time.Duration `split_words:"true" default:"5m"`
}

// Store wraps a bun database. It is safe for concurrent use.
type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var (
		sqldb   *sql.DB
		dialect schema.Dialect
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		dsn, err := sqliteDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		sqldb, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		dialect = sqlitedialect.New()
	case DriverPostgres, "postgresql", "pg":
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(strings.TrimSpace(cfg.DSN))))
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnLifetime)
	}

	db := bun.NewDB(sqldb, dialect)
	db.AddQueryHook(newQueryHook(cfg.Debug))

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return New(db), nil
}

func sqliteDSN(raw string) (string, error) {
	dsn := strings.TrimSpace(raw)
	if dsn == "" {
		dsn = "app.db"
	}
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}

	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + sqlitePragmas, nil
}

func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates every table and index that does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	models := []struct {
		model any
		fks   []string
	}{
		{model: (*User)(nil)},
		{model: (*Account)(nil), fks: []string{`("user_id") REFERENCES "users" ("id")`}},
		{model: (*Transaction)(nil), fks: []string{`("account_id") REFERENCES "accounts" ("id")`}},
		{model: (*ServiceRequest)(nil), fks: []string{`("user_id") REFERENCES "users" ("id")`}},
	}

	for _, m := range models {
		q := s.db.NewCreateTable().Model(m.model).IfNotExists()
		for _, fk := range m.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m.model, err)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{model: (*Account)(nil), name: "idx_accounts_user_id", columns: []string{"user_id"}},
		{model: (*Transaction)(nil), name: "idx_transactions_account_ts", columns: []string{"account_id", "timestamp"}},
		{model: (*ServiceRequest)(nil), name: "idx_service_requests_status", columns: []string{"status"}},
	}

	for _, idx := range indexes {
		if _, err := s.db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}
