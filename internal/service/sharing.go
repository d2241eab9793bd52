package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nisthasiemens/docshare/internal/apperror"
	"github.com/nisthasiemens/docshare/internal/model"
	"github.com/nisthasiemens/docshare/internal/repository"
)

// SharingService manages the per-document share lists.
type SharingService struct {
	uploads repository.UploadRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

// NewSharingService creates a SharingService.
func NewSharingService(
	uploads repository.UploadRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *SharingService {
	return &SharingService{
		uploads: uploads,
		users:   users,
		logger:  logger,
	}
}

// Share grants targetUserID read access to a document. Sharing twice with
// the same user is rejected with ErrConflict, which is what keeps the share
// list duplicate-free (ListShareableUsers deliberately does not pre-filter
// already-shared users).
func (s *SharingService) Share(ctx context.Context, documentID, targetUserID string) error {
	if documentID == "" {
		return apperror.ValidationFailed("documentID", "document ID is required")
	}
	if targetUserID == "" {
		return apperror.ValidationFailed("userID", "please select a user to share with")
	}

	upload, err := s.uploads.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if slices.Contains(upload.SharedWith, targetUserID) {
		return apperror.Conflict("this document is already shared with that user")
	}

	if err := s.uploads.AddShare(ctx, documentID, targetUserID); err != nil {
		s.logger.Error("failed to share document",
			slog.String("documentID", documentID),
			slog.String("userID", targetUserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("sharing document: %w", err)
	}

	s.logger.Info("document shared",
		slog.String("documentID", documentID),
		slog.String("userID", targetUserID),
	)

	return nil
}

// Unshare revokes targetUserID's access. Returns ErrNotFound both when the
// document is missing and when the user wasn't in its share list. A
// share/unshare pair is a round trip: the list ends up exactly as it began.
func (s *SharingService) Unshare(ctx context.Context, documentID, targetUserID string) error {
	if documentID == "" {
		return apperror.ValidationFailed("documentID", "document ID is required")
	}
	if targetUserID == "" {
		return apperror.ValidationFailed("userID", "user ID is required")
	}

	if _, err := s.uploads.GetByID(ctx, documentID); err != nil {
		return err
	}

	if err := s.uploads.RemoveShare(ctx, documentID, targetUserID); err != nil {
		return err
	}

	s.logger.Info("document unshared",
		slog.String("documentID", documentID),
		slog.String("userID", targetUserID),
	)

	return nil
}

// ListShareTargets returns the users a document is shared with, in grant
// order. Share-list entries whose user has been deleted are silently
// skipped — the repository resolves the list with a join, so dangling IDs
// simply produce no row.
func (s *SharingService) ListShareTargets(ctx context.Context, documentID string) ([]model.User, error) {
	if documentID == "" {
		return nil, apperror.ValidationFailed("documentID", "document ID is required")
	}

	// Surface a missing document as NotFound rather than an empty list.
	if _, err := s.uploads.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	users, err := s.uploads.ListShareUsers(ctx, documentID)
	if err != nil {
		s.logger.Error("failed to list share targets",
			slog.String("documentID", documentID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing share targets: %w", err)
	}

	return users, nil
}

// ListShareableUsers returns every user except the current one, for the
// share-target selection control.
func (s *SharingService) ListShareableUsers(ctx context.Context, currentUserID string) ([]model.User, error) {
	if currentUserID == "" {
		return nil, apperror.ValidationFailed("userID", "user ID is required")
	}

	all, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list shareable users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing shareable users: %w", err)
	}

	shareable := make([]model.User, 0, len(all))
	for _, u := range all {
		if u.ID != currentUserID {
			shareable = append(shareable, u)
		}
	}

	return shareable, nil
}
