package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nisthasiemens/docshare/internal/apperror"
	"github.com/nisthasiemens/docshare/internal/model"
)

func newTestSharingService() (*SharingService, *mockUploadRepo, *mockUserRepo) {
	uploads := newMockUploadRepo()
	users := newMockUserRepo()
	uploads.resolveUsers = users
	return NewSharingService(uploads, users, testLogger()), uploads, users
}

func addTestUpload(t *testing.T, uploads *mockUploadRepo, description, ownerID string) *model.Upload {
	t.Helper()
	upload := &model.Upload{
		FileDescription: description,
		FileName:        description + ".txt",
		Data:            "data:text/plain;base64,eA==",
		UploadedBy:      ownerID,
	}
	if err := uploads.Create(context.Background(), upload); err != nil {
		t.Fatalf("failed to create test upload: %v", err)
	}
	return upload
}

func addTestUser(t *testing.T, users *mockUserRepo, name string) *model.User {
	t.Helper()
	user := &model.User{
		UserName: name,
		Email:    name + "@gmail.com",
		Password: "pass1234",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestShare(t *testing.T) {
	s, uploads, users := newTestSharingService()
	ctx := context.Background()

	doc := addTestUpload(t, uploads, "report", "owner-1")
	bob := addTestUser(t, users, "bob")

	if err := s.Share(ctx, doc.ID, bob.ID); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	got, err := uploads.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.SharedWith) != 1 || got.SharedWith[0] != bob.ID {
		t.Errorf("SharedWith = %v, want [%s]", got.SharedWith, bob.ID)
	}
}

func TestShare_Twice(t *testing.T) {
	s, uploads, users := newTestSharingService()
	ctx := context.Background()

	doc := addTestUpload(t, uploads, "report", "owner-1")
	bob := addTestUser(t, users, "bob")

	if err := s.Share(ctx, doc.ID, bob.ID); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	err := s.Share(ctx, doc.ID, bob.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Share() error = %v, want ErrConflict", err)
	}

	// The rejected grant must not have touched the list.
	got, err := uploads.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.SharedWith) != 1 {
		t.Errorf("SharedWith = %v, want exactly one entry", got.SharedWith)
	}
}

func TestShare_DocumentNotFound(t *testing.T) {
	s, _, users := newTestSharingService()

	bob := addTestUser(t, users, "bob")

	err := s.Share(context.Background(), "no-such-doc", bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Share() missing document: error = %v, want ErrNotFound", err)
	}
}

func TestShareUnshare_RoundTrip(t *testing.T) {
	s, uploads, users := newTestSharingService()
	ctx := context.Background()

	doc := addTestUpload(t, uploads, "report", "owner-1")
	bob := addTestUser(t, users, "bob")

	if err := s.Share(ctx, doc.ID, bob.ID); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if err := s.Unshare(ctx, doc.ID, bob.ID); err != nil {
		t.Fatalf("Unshare() error = %v", err)
	}

	got, err := uploads.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.SharedWith) != 0 {
		t.Errorf("SharedWith after round trip = %v, want empty", got.SharedWith)
	}
}

func TestUnshare_NotShared(t *testing.T) {
	s, uploads, users := newTestSharingService()

	doc := addTestUpload(t, uploads, "report", "owner-1")
	bob := addTestUser(t, users, "bob")

	err := s.Unshare(context.Background(), doc.ID, bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Unshare() never-shared user: error = %v, want ErrNotFound", err)
	}
}

func TestListShareTargets_SkipsDeletedUsers(t *testing.T) {
	s, uploads, users := newTestSharingService()
	ctx := context.Background()

	doc := addTestUpload(t, uploads, "report", "owner-1")
	bob := addTestUser(t, users, "bob")
	carol := addTestUser(t, users, "carol")

	if err := s.Share(ctx, doc.ID, bob.ID); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if err := s.Share(ctx, doc.ID, carol.ID); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	if err := users.Delete(ctx, bob.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	targets, err := s.ListShareTargets(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListShareTargets() error = %v", err)
	}
	if len(targets) != 1 || targets[0].ID != carol.ID {
		t.Errorf("ListShareTargets() = %v, want only carol", targets)
	}
}

func TestListShareTargets_DocumentNotFound(t *testing.T) {
	s, _, _ := newTestSharingService()

	_, err := s.ListShareTargets(context.Background(), "no-such-doc")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ListShareTargets() missing document: error = %v, want ErrNotFound", err)
	}
}

func TestListShareableUsers_ExcludesSelf(t *testing.T) {
	s, _, users := newTestSharingService()

	alice := addTestUser(t, users, "alice")
	bob := addTestUser(t, users, "bob")
	carol := addTestUser(t, users, "carol")

	shareable, err := s.ListShareableUsers(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListShareableUsers() error = %v", err)
	}
	if len(shareable) != 2 {
		t.Fatalf("ListShareableUsers() returned %d users, want 2", len(shareable))
	}
	if shareable[0].ID != bob.ID || shareable[1].ID != carol.ID {
		t.Errorf("ListShareableUsers() = %v, want [bob carol]", shareable)
	}
}
