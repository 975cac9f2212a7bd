package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/coviddata/internal/apperr"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = len(migrations)

// Querier is the driver surface every store operation runs on.
// *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Conn)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Store owns the SQLite database holding cases and places.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// connParams configure every pooled connection through the DSN: WAL
// journal, NORMAL sync, a 5s busy timeout and enforced foreign keys, which
// the place tree relies on.
const connParams = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"

// Open creates or opens the SQLite database at path, then brings its schema
// up to currentSchemaVersion. A nil logger means slog.Default().
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", path+"?"+connParams)
	if err != nil {
		return nil, apperr.DataLayer("open store", err)
	}
	// One writer at a time; operations serialize on this connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, apperr.DataLayer("open store", err)
	}

	logger.Debug("store opened", "path", path, "schema_version", currentSchemaVersion)
	return s, nil
}

// Close releases the database. It is safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the connection pool. Store methods hold its only connection
// while they run, so callers must not use it concurrently with them.
func (s *Store) DB() *sql.DB {
	return s.db
}

// withConn borrows one connection for the duration of fn. Every statement fn
// issues must go through q: with a single pooled connection, reaching back to
// s.db inside fn would block.
func (s *Store) withConn(ctx context.Context, fn func(q Querier) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// withTx runs fn in a transaction on a borrowed connection. The transaction
// commits only when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(q Querier) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// migrations[i] upgrades a database at user_version i to i+1.
var migrations = []func(ctx context.Context, q Querier) error{
	// v1: every cumulative query groups by date and most filters bound it.
	func(ctx context.Context, q Querier) error {
		_, err := q.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_cases_date ON cases(date)`)
		return err
	},
}

// migrate creates missing tables and runs pending migrations.
func (s *Store) migrate(ctx context.Context) error {
	return s.withConn(ctx, func(q Querier) error {
		if _, err := q.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}

		var version int
		if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
			return fmt.Errorf("read user_version: %w", err)
		}
		for v := version; v < len(migrations); v++ {
			if err := migrations[v](ctx, q); err != nil {
				return fmt.Errorf("migrate to v%d: %w", v+1, err)
			}
		}
		if version != currentSchemaVersion {
			if _, err := q.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
				return fmt.Errorf("write user_version: %w", err)
			}
		}
		return nil
	})
}

// pragma reads the current value of a connection setting.
func (s *Store) pragma(ctx context.Context, name string) (value string, err error) {
	err = s.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&value)
	return value, err
}
