package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nisthasiemens/docshare/internal/apperror"
	"github.com/nisthasiemens/docshare/internal/model"
	"github.com/nisthasiemens/docshare/internal/repository"
)

// compile-time check that *SessionDB implements repository.SessionRepository
var _ repository.SessionRepository = (*SessionDB)(nil)

// SessionDB is the session repository, backed by the single-row session
// table. It shares the connection pool with the parent DB.
type SessionDB struct {
	conn *sql.DB
}

// Session returns the session repository view of the database.
func (db *DB) Session() *SessionDB {
	return &SessionDB{conn: db.conn}
}

// Set stores user as the CurrentUser snapshot, replacing any previous one.
// The session table is pinned to a single row (id = 1), so INSERT OR
// REPLACE is both "log in" and "switch user".
//
// The row is a COPY of the user's fields, not a reference: a snapshot of who
// logged in. It is refreshed only when that same user edits their own
// profile (see UserDB.Update in user.go).
func (db *SessionDB) Set(ctx context.Context, user *model.User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO session (id, user_id, user_name, email, password, created_at, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.UserName,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting session for user %s: %w", user.ID, err)
	}
	return nil
}

// Get returns the active session's user snapshot.
// Returns apperror.ErrNotFound when nobody is logged in.
func (db *SessionDB) Get(ctx context.Context) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, user_name, email, password, created_at, updated_at
		 FROM session WHERE id = 1`,
	).Scan(
		&u.ID,
		&u.UserName,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", "current")
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	return &u, nil
}

// Clear removes the CurrentUser snapshot. Clearing an already-empty session
// is not an error — logout is idempotent.
func (db *SessionDB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("sqlite: clearing session: %w", err)
	}
	return nil
}
