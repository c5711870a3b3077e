// Package sqlite implements the remote cache tier as a single-table
// key-value store with millisecond expiry timestamps.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// schema is applied on every open. Both statements are idempotent, so
// reopening an existing database is safe.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_kv_expires_at ON kv (expires_at);
`

// DB wraps a single SQLite connection. SQLite allows one writer at a time,
// so the pool is capped at one connection and contending writers queue on
// the busy timeout instead of failing with a locked error.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns an unopened DB for the given path. ":memory:" selects an
// in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open connects, applies pragmas, and ensures the kv schema exists.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", db.path, err)
	}

	conn.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	// WAL only applies to file-backed databases.
	if db.path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return fmt.Errorf("apply kv schema: %w", err)
	}

	db.db = conn
	return nil
}

// Close closes the underlying connection. Safe to call on an unopened DB.
func (db *DB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}
