package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nisthasiemens/docshare/internal/apperror"
	"github.com/nisthasiemens/docshare/internal/model"
	"github.com/nisthasiemens/docshare/internal/repository"
)

// MaxFileBytes caps the raw size of an uploaded file. The content is stored
// inline in the database as base64 text, so unbounded uploads would bloat
// every list query that touches the data column.
const MaxFileBytes = 5 << 20 // 5 MiB

// DocumentService handles CRUD over uploaded documents.
//
// Uploading needs to know who the owner is; that comes from the
// CurrentUser snapshot, so the service takes the session repository
// alongside the upload repository.
type DocumentService struct {
	uploads  repository.UploadRepository
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(
	uploads repository.UploadRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) *DocumentService {
	return &DocumentService{
		uploads:  uploads,
		sessions: sessions,
		logger:   logger,
	}
}

// Upload stores a new document owned by the current user.
//
// The description must be unique across ALL uploads: it doubles as the
// document's display label, and duplicate labels would make every listing
// ambiguous. The raw bytes are wrapped into a self-describing data-URI
// payload before they hit the store.
//
// A persistence failure comes back as ErrStorage with no partial state: the
// insert either commits whole or not at all.
func (s *DocumentService) Upload(ctx context.Context, description, fileName string, content []byte) (*model.Upload, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperror.ValidationFailed("fileDescription", "file description is required")
	}
	if fileName == "" {
		return nil, apperror.ValidationFailed("fileName", "file name is required")
	}
	if len(content) > MaxFileBytes {
		return nil, apperror.ValidationFailed("file",
			fmt.Sprintf("file must be %d bytes or less", MaxFileBytes))
	}

	owner, err := s.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("please log in to upload documents")
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	taken, err := s.uploads.DescriptionTaken(ctx, description, "")
	if err != nil {
		return nil, fmt.Errorf("checking description: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("file with this description already exists")
	}

	upload := &model.Upload{
		FileDescription: description,
		FileName:        fileName,
		Data:            model.EncodeFileData(fileName, content),
		UploadedBy:      owner.ID,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		s.logger.Error("failed to save upload",
			slog.String("fileName", fileName),
			slog.String("error", err.Error()),
		)
		return nil, apperror.StorageFailed("error saving file, storage might be full")
	}

	s.logger.Info("document uploaded",
		slog.String("id", upload.ID),
		slog.String("fileName", upload.FileName),
		slog.String("owner", upload.UploadedBy),
	)

	return upload, nil
}

// Get returns a single upload by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*model.Upload, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "document ID is required")
	}
	return s.uploads.GetByID(ctx, id)
}

// EditDescription changes a document's description. The new description
// must not collide with any OTHER upload's description; editing a document
// back to its own current description is allowed.
func (s *DocumentService) EditDescription(ctx context.Context, id, newDescription string) (*model.Upload, error) {
	newDescription = strings.TrimSpace(newDescription)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "document ID is required")
	}
	if newDescription == "" {
		return nil, apperror.ValidationFailed("fileDescription", "please enter a file description to edit document")
	}

	taken, err := s.uploads.DescriptionTaken(ctx, newDescription, id)
	if err != nil {
		return nil, fmt.Errorf("checking description: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("file with this description already exists")
	}

	upload, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.uploads.UpdateDescription(ctx, id, newDescription); err != nil {
		s.logger.Error("failed to edit document",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("editing document: %w", err)
	}

	upload.FileDescription = newDescription

	s.logger.Info("document edited", slog.String("id", id))

	return upload, nil
}

// Delete removes a document and, with it, its entire share list. Deleting
// an absent ID is a no-op.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "document ID is required")
	}

	if err := s.uploads.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to delete document",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting document: %w", err)
	}

	s.logger.Info("document deleted", slog.String("id", id))
	return nil
}

// ListOwnedBy returns the documents owned by ownerID, in storage order.
func (s *DocumentService) ListOwnedBy(ctx context.Context, ownerID string) ([]model.Upload, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerID", "owner ID is required")
	}
	uploads, err := s.uploads.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list owned documents", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing owned documents: %w", err)
	}
	return uploads, nil
}

// ListSharedWith returns the documents shared with userID, excluding any
// owned by excludingOwnerID (a document never shows up in its own owner's
// "shared with me" view), in storage order.
func (s *DocumentService) ListSharedWith(ctx context.Context, userID, excludingOwnerID string) ([]model.Upload, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userID", "user ID is required")
	}
	uploads, err := s.uploads.ListSharedWith(ctx, userID, excludingOwnerID)
	if err != nil {
		s.logger.Error("failed to list shared documents", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing shared documents: %w", err)
	}
	return uploads, nil
}

// FileContent decodes a document's stored payload back into its media type
// and raw bytes, for download.
func (s *DocumentService) FileContent(ctx context.Context, id string) (mediaType string, content []byte, err error) {
	upload, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	mediaType, content, err = model.DecodeFileData(upload.Data)
	if err != nil {
		return "", nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return mediaType, content, nil
}
