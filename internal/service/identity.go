// Package service contains the business logic layer of the application.
//
// The code is organised the same way on every path through the app:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and return domain models plus apperror values;
// they know nothing about HTTP. Each service takes its repositories as
// interfaces so tests can inject in-memory fakes.
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

// EmailDomain is the fixed suffix every account email must carry. Only
// Gmail addresses are accepted.
const EmailDomain = "@gmail.com"

// IdentityService handles registration, login, the CurrentUser session
// snapshot, and user management.
type IdentityService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewIdentityService creates an IdentityService.
func NewIdentityService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// validEmail checks the fixed-domain rule: a non-empty local part followed
// by EmailDomain. Matching is exact and case-sensitive throughout.
func validEmail(email string) bool {
	return strings.HasSuffix(email, EmailDomain) && len(email) > len(EmailDomain)
}

// Register creates a new account.
//
// All four fields are required. The email must pass the fixed-domain check,
// the password must match its confirmation, and no existing user may hold
// the same email (exact match). The confirmation is checked here and then
// discarded — only the password itself is stored.
func (s *IdentityService) Register(ctx context.Context, userName, email, password, confirmPassword string) (*model.User, error) {
	if userName == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, apperror.ValidationFailed("", "please enter all fields to register")
	}
	if !validEmail(email) {
		return nil, apperror.ValidationFailed("email", "please enter a valid email address to register")
	}
	if password != confirmPassword {
		return nil, apperror.ValidationFailed("password", "passwords do not match")
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	user := &model.User{
		UserName: userName,
		Email:    email,
		Password: password,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to register user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates by exact (email, password) match and stores the
// matched user as the CurrentUser snapshot.
//
// The error distinguishes "no such account" from "wrong password"; the
// two cases surface as different messages to the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "please enter both email and password to login")
	}
	if !validEmail(email) {
		return nil, apperror.ValidationFailed("email", "please enter a valid email address")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// ErrNotFound propagates as-is: user not registered with this email.
		return nil, err
	}

	if user.Password != password {
		return nil, apperror.Unauthorized("incorrect password")
	}

	if err := s.sessions.Set(ctx, user); err != nil {
		s.logger.Error("failed to store session",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing session: %w", err)
	}

	s.logger.Info("user logged in", slog.String("id", user.ID))

	return user, nil
}

// Logout clears the CurrentUser snapshot. Logging out while already logged
// out is fine.
func (s *IdentityService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.logger.Info("user logged out")
	return nil
}

// CurrentUser returns the active session's user snapshot, or ErrNotFound
// when nobody is logged in.
func (s *IdentityService) CurrentUser(ctx context.Context) (*model.User, error) {
	return s.sessions.Get(ctx)
}

// ListUsers returns every registered user in registration order.
func (s *IdentityService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// EditUser updates a user's name and email in place. If the edited user is
// the one currently logged in, the repository refreshes the CurrentUser
// snapshot in the same transaction.
//
// Only name and email are editable; the password never changes here.
func (s *IdentityService) EditUser(ctx context.Context, id, newName, newEmail string) (*model.User, error) {
	newName = strings.TrimSpace(newName)
	newEmail = strings.TrimSpace(newEmail)

	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	if newName == "" || newEmail == "" {
		return nil, apperror.ValidationFailed("", "please enter both name and email to edit user")
	}

	if err := s.ensureEmailFree(ctx, newEmail, id); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.UserName = newName
	user.Email = newEmail
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to edit user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("editing user: %w", err)
	}

	s.logger.Info("user edited", slog.String("id", user.ID))

	return user, nil
}

// DeleteUser removes a user. Deleting an ID that doesn't exist is a no-op,
// not an error — callers confirm against a list that may already be stale.
//
// No cascade: the user's uploads keep their uploaded_by value and share
// lists keep the deleted ID. Readers tolerate the dangling references.
func (s *IdentityService) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		s.logger.Error("failed to delete user",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting user: %w", err)
	}

	s.logger.Info("user deleted", slog.String("id", id))
	return nil
}

// ensureEmailFree returns ErrConflict when a user other than excludeID
// already holds the email.
func (s *IdentityService) ensureEmailFree(ctx context.Context, email, excludeID string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("checking email %s: %w", email, err)
	}
	if existing.ID != excludeID {
		return apperror.Conflict("user with this email already exists")
	}
	return nil
}
