package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nisthasiemens/docshare/internal/apperror"
	"github.com/nisthasiemens/docshare/internal/model"
	"github.com/nisthasiemens/docshare/internal/repository"
)

// compile-time check that *UploadDB implements repository.UploadRepository
var _ repository.UploadRepository = (*UploadDB)(nil)

// UploadDB is the upload repository, backed by the uploads and shares
// tables. It shares the connection pool with the parent DB.
type UploadDB struct {
	conn *sql.DB
}

// Uploads returns the upload repository view of the database.
func (db *DB) Uploads() *UploadDB {
	return &UploadDB{conn: db.conn}
}

const uploadColumns = `id, file_description, file_name, data, uploaded_by, created_at, updated_at`

// Create inserts a new upload with a fresh ID and an empty share list.
func (db *UploadDB) Create(ctx context.Context, upload *model.Upload) error {
	upload.ID = xid.New().String()
	now := time.Now()
	upload.CreatedAt = now
	upload.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO uploads (`+uploadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		upload.ID,
		upload.FileDescription,
		upload.FileName,
		upload.Data,
		upload.UploadedBy,
		upload.CreatedAt,
		upload.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting upload %q: %w", upload.FileName, err)
	}

	return nil
}

// GetByID retrieves a single upload, including its share list.
func (db *UploadDB) GetByID(ctx context.Context, id string) (*model.Upload, error) {
	var u model.Upload

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+uploadColumns+` FROM uploads WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.FileDescription,
		&u.FileName,
		&u.Data,
		&u.UploadedBy,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("upload", id)
		}
		return nil, fmt.Errorf("sqlite: getting upload %s: %w", id, err)
	}

	if err := db.loadShares(ctx, &u); err != nil {
		return nil, err
	}

	return &u, nil
}

// DescriptionTaken reports whether another upload already uses the given
// description. excludeID = "" checks against every upload (the create case);
// otherwise the upload being edited is left out of the check.
func (db *UploadDB) DescriptionTaken(ctx context.Context, description, excludeID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM uploads WHERE file_description = ? AND id != ?`,
		description, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking description %q: %w", description, err)
	}
	return count > 0, nil
}

// ListByOwner returns the uploads owned by ownerID in storage order.
func (db *UploadDB) ListByOwner(ctx context.Context, ownerID string) ([]model.Upload, error) {
	return db.listUploads(ctx,
		`SELECT `+uploadColumns+` FROM uploads
		 WHERE uploaded_by = ?
		 ORDER BY rowid`,
		ownerID,
	)
}

// ListSharedWith returns the uploads shared with userID, excluding any
// owned by excludingOwnerID, in storage order. The exclusion keeps a
// document out of its owner's "shared with me" view even if the owner's own
// ID somehow ended up in the share list.
func (db *UploadDB) ListSharedWith(ctx context.Context, userID, excludingOwnerID string) ([]model.Upload, error) {
	return db.listUploads(ctx,
		`SELECT `+uploadColumns+` FROM uploads
		 WHERE uploaded_by != ?
		   AND id IN (SELECT upload_id FROM shares WHERE user_id = ?)
		 ORDER BY rowid`,
		excludingOwnerID, userID,
	)
}

func (db *UploadDB) listUploads(ctx context.Context, query string, args ...any) ([]model.Upload, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing uploads: %w", err)
	}
	defer rows.Close()

	var uploads []model.Upload
	for rows.Next() {
		var u model.Upload
		if err := rows.Scan(
			&u.ID, &u.FileDescription, &u.FileName, &u.Data, &u.UploadedBy,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning upload row: %w", err)
		}
		uploads = append(uploads, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating uploads: %w", err)
	}

	for i := range uploads {
		if err := db.loadShares(ctx, &uploads[i]); err != nil {
			return nil, err
		}
	}

	return uploads, nil
}

// loadShares fills in an upload's SharedWith list in grant order.
func (db *UploadDB) loadShares(ctx context.Context, upload *model.Upload) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id FROM shares WHERE upload_id = ? ORDER BY rowid`,
		upload.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading shares for upload %s: %w", upload.ID, err)
	}
	defer rows.Close()

	upload.SharedWith = nil
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return fmt.Errorf("sqlite: scanning share row: %w", err)
		}
		upload.SharedWith = append(upload.SharedWith, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating shares: %w", err)
	}

	return nil
}

// UpdateDescription changes an upload's description in place.
func (db *UploadDB) UpdateDescription(ctx context.Context, id, description string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE uploads SET file_description = ?, updated_at = ? WHERE id = ?`,
		description, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating upload %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("upload", id)
	}

	return nil
}

// Delete removes an upload and its share rows in one transaction. This is
// the one place references ARE cleaned up: the share list belongs to the
// record being removed, so it goes with it.
func (db *UploadDB) Delete(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning upload delete: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting upload %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("upload", id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shares WHERE upload_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting shares for upload %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing upload delete: %w", err)
	}

	return nil
}

// AddShare appends userID to an upload's share list. The caller (the
// sharing service) has already checked existence and membership; the UNIQUE
// pair constraint is the backstop.
func (db *UploadDB) AddShare(ctx context.Context, uploadID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO shares (upload_id, user_id) VALUES (?, ?)`,
		uploadID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding share (upload=%s, user=%s): %w", uploadID, userID, err)
	}
	return nil
}

// RemoveShare drops userID from an upload's share list.
// Returns apperror.ErrNotFound if no such share exists.
func (db *UploadDB) RemoveShare(ctx context.Context, uploadID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM shares WHERE upload_id = ? AND user_id = ?`,
		uploadID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing share (upload=%s, user=%s): %w", uploadID, userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("share", userID)
	}

	return nil
}

// ListShareUsers resolves an upload's share list against the users table.
//
// INNER JOIN, not a per-ID lookup: share entries whose user has since been
// deleted simply produce no row, which is exactly the dangling-reference
// tolerance the callers expect.
func (db *UploadDB) ListShareUsers(ctx context.Context, uploadID string) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.user_name, u.email, u.password, u.created_at, u.updated_at
		 FROM shares s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.upload_id = ?
		 ORDER BY s.rowid`,
		uploadID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing share users for upload %s: %w", uploadID, err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.UserName, &u.Email, &u.Password,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning share user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating share users: %w", err)
	}

	return users, nil
}
