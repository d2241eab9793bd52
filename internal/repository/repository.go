package repository

import (
	"context"

	"github.com/nisthasiemens/docshare/internal/model"
)

// UserRepository is the data layer for user accounts.
//
// Update also refreshes the session snapshot when the updated user is the
// one currently logged in, in the same transaction, so the snapshot can
// never drift from the user row.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// UploadRepository is the data layer for uploaded documents and their share
// lists. List results come back in storage (insertion) order.
type UploadRepository interface {
	Create(ctx context.Context, upload *model.Upload) error
	GetByID(ctx context.Context, id string) (*model.Upload, error)
	// DescriptionTaken reports whether any upload other than excludeID
	// already uses the given description. Pass excludeID = "" on create.
	DescriptionTaken(ctx context.Context, description, excludeID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Upload, error)
	ListSharedWith(ctx context.Context, userID, excludingOwnerID string) ([]model.Upload, error)
	UpdateDescription(ctx context.Context, id, description string) error
	Delete(ctx context.Context, id string) error

	AddShare(ctx context.Context, uploadID, userID string) error
	RemoveShare(ctx context.Context, uploadID, userID string) error
	// ListShareUsers resolves an upload's share list against the user table,
	// in grant order. IDs with no matching user are silently skipped.
	ListShareUsers(ctx context.Context, uploadID string) ([]model.User, error)
}

// SessionRepository persists the single CurrentUser snapshot.
type SessionRepository interface {
	Set(ctx context.Context, user *model.User) error
	// Get returns the active session's user snapshot, or ErrNotFound when
	// nobody is logged in.
	Get(ctx context.Context) (*model.User, error)
	Clear(ctx context.Context) error
}

// ChatRepository is the data layer for the append-only chat log.
type ChatRepository interface {
	Append(ctx context.Context, msg *model.ChatMessage) error
	List(ctx context.Context) ([]model.ChatMessage, error)
}
