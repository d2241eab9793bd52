// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// Each logical record gets its own table, every mutation is a single
// statement or a transaction, and the share list is a proper two-column
// table with a UNIQUE pair constraint backing the "an ID appears at most
// once" invariant.
//
// WHY modernc.org/sqlite?
// It is a pure-Go translation of SQLite — no CGo, no C compiler, trivial
// cross-compilation, and ":memory:" databases make tests fast and isolated.
//
// Storage order matters to the callers (lists are rendered in insertion
// order), so list queries use ORDER BY rowid rather than a timestamp column.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" at init time.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The repository interfaces are
// implemented by per-table views (UserDB, UploadDB, SessionDB, ChatDB)
// that all share this pool; use the Users/Uploads/Session/Chat accessors.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for throwaway databases in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must never
	// open a second one or half the queries would see empty tables.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path surfaces here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this right after a
// successful New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
//
// NOTE ON MISSING FOREIGN KEYS:
// uploads.uploaded_by and shares.user_id intentionally carry no FOREIGN KEY
// constraint. Deleting a user must leave their uploads and any share rows
// pointing at them in place — dangling references are part of the contract,
// and share listings resolve them with an INNER JOIN that skips the dead
// entries.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			user_name  TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS uploads (
			id               TEXT PRIMARY KEY,
			file_description TEXT NOT NULL UNIQUE,
			file_name        TEXT NOT NULL,
			data             TEXT NOT NULL,
			uploaded_by      TEXT NOT NULL,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_uploads_uploaded_by ON uploads(uploaded_by);
	`)
	if err != nil {
		return fmt.Errorf("creating uploads table: %w", err)
	}

	// The UNIQUE pair is the database-level backstop for the service-level
	// "already shared" check.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS shares (
			upload_id TEXT NOT NULL,
			user_id   TEXT NOT NULL,
			UNIQUE (upload_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_shares_user_id ON shares(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating shares table: %w", err)
	}

	// Single-row table: the CHECK pins the row id so Set can always
	// INSERT OR REPLACE on id = 1.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			user_id    TEXT NOT NULL,
			user_name  TEXT NOT NULL,
			email      TEXT NOT NULL,
			password   TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating session table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS chat_messages (
			id         TEXT PRIMARY KEY,
			time_stamp TEXT NOT NULL,
			user_name  TEXT NOT NULL,
			message    TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating chat_messages table: %w", err)
	}

	return nil
}
