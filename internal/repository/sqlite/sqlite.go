// Package sqlite implements the repository interfaces on SQLite.
//
// SQLite keeps the whole store in one file inside the deployment — no
// database server to run next to the API. modernc.org/sqlite is a pure Go
// driver, so the binary cross-compiles without cgo.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and implements repository.UserRepository and
// repository.UsageRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY under write contention and keeps ":memory:" databases
	// visible across calls (each pool connection would otherwise get its
	// own empty in-memory database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server defers this on shutdown so
// the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe
// to run on every start.
func (db *DB) migrate() error {
	// Users carry the streak/coin counters alongside the account record.
	// last_login is nullable: a registered-but-never-logged-in user has
	// no last login, and the streak engine needs to see that.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER NOT NULL DEFAULT 0,
			streak        INTEGER NOT NULL DEFAULT 0,
			coins         INTEGER NOT NULL DEFAULT 0,
			last_login    DATETIME,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_github_id ON users(github_id);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// One snapshot per user per UTC date — the UNIQUE constraint is the
	// upsert key. Apps are stored as a JSON array.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS daily_usage (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			date       TEXT NOT NULL,
			apps       TEXT NOT NULL DEFAULT '[]',
			total_time TEXT NOT NULL DEFAULT '0m',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating daily_usage table: %w", err)
	}

	// Append-only analysis history. The three payload columns hold the
	// classifier's JSON verbatim.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS usage_events (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL REFERENCES users(id),
			occurred_at     DATETIME NOT NULL,
			usage           TEXT NOT NULL,
			cluster         TEXT NOT NULL DEFAULT 'null',
			prediction      TEXT NOT NULL DEFAULT 'null',
			recommendations TEXT NOT NULL DEFAULT 'null'
		);
		CREATE INDEX IF NOT EXISTS idx_usage_events_user ON usage_events(user_id, occurred_at);
	`)
	if err != nil {
		return fmt.Errorf("creating usage_events table: %w", err)
	}

	return nil
}
