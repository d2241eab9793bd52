package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/nisthasiemens/docshare/internal/apperror"
	"github.com/nisthasiemens/docshare/internal/model"
	"github.com/nisthasiemens/docshare/internal/repository"
)

// Hand-written in-memory fakes for the repository interfaces. The services
// only see the interfaces, so these swap in for the sqlite implementations
// with no test database at all. Each mock stores copies, not pointers, so a
// test can't accidentally mutate the "stored" state through a returned value.

// testLogger discards everything; service log output is noise in tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// users

type mockUserRepo struct {
	users  []model.User // slice, not map: List must preserve insertion order
	nextID int

	failList bool // simulate a storage failure
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			result := u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	if m.failList {
		return nil, fmt.Errorf("mock: list failed")
	}
	return slices.Clone(m.users), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	for i, u := range m.users {
		if u.ID == user.ID {
			m.users[i] = *user
			return nil
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	for i, u := range m.users {
		if u.ID == id {
			m.users = slices.Delete(m.users, i, i+1)
			return nil
		}
	}
	return apperror.NotFound("user", id)
}

// ---------------------------------------------------------------------------
// uploads

type mockUploadRepo struct {
	uploads []model.Upload
	nextID  int

	failCreate bool // simulate a full disk on Create

	// resolveUsers backs ListShareUsers; nil means every share ID dangles.
	resolveUsers *mockUserRepo
}

var _ repository.UploadRepository = (*mockUploadRepo)(nil)

func newMockUploadRepo() *mockUploadRepo {
	return &mockUploadRepo{}
}

func (m *mockUploadRepo) Create(_ context.Context, upload *model.Upload) error {
	if m.failCreate {
		return fmt.Errorf("mock: disk full")
	}
	m.nextID++
	upload.ID = fmt.Sprintf("upload-%d", m.nextID)
	m.uploads = append(m.uploads, *upload)
	return nil
}

func (m *mockUploadRepo) GetByID(_ context.Context, id string) (*model.Upload, error) {
	for _, u := range m.uploads {
		if u.ID == id {
			result := u
			result.SharedWith = slices.Clone(u.SharedWith)
			return &result, nil
		}
	}
	return nil, apperror.NotFound("upload", id)
}

func (m *mockUploadRepo) DescriptionTaken(_ context.Context, description, excludeID string) (bool, error) {
	for _, u := range m.uploads {
		if u.FileDescription == description && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUploadRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Upload, error) {
	var result []model.Upload
	for _, u := range m.uploads {
		if u.UploadedBy == ownerID {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUploadRepo) ListSharedWith(_ context.Context, userID, excludingOwnerID string) ([]model.Upload, error) {
	var result []model.Upload
	for _, u := range m.uploads {
		if u.UploadedBy != excludingOwnerID && slices.Contains(u.SharedWith, userID) {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUploadRepo) UpdateDescription(_ context.Context, id, description string) error {
	for i, u := range m.uploads {
		if u.ID == id {
			m.uploads[i].FileDescription = description
			return nil
		}
	}
	return apperror.NotFound("upload", id)
}

func (m *mockUploadRepo) Delete(_ context.Context, id string) error {
	for i, u := range m.uploads {
		if u.ID == id {
			m.uploads = slices.Delete(m.uploads, i, i+1)
			return nil
		}
	}
	return apperror.NotFound("upload", id)
}

func (m *mockUploadRepo) AddShare(_ context.Context, uploadID, userID string) error {
	for i, u := range m.uploads {
		if u.ID == uploadID {
			m.uploads[i].SharedWith = append(m.uploads[i].SharedWith, userID)
			return nil
		}
	}
	return apperror.NotFound("upload", uploadID)
}

func (m *mockUploadRepo) RemoveShare(_ context.Context, uploadID, userID string) error {
	for i, u := range m.uploads {
		if u.ID != uploadID {
			continue
		}
		idx := slices.Index(u.SharedWith, userID)
		if idx < 0 {
			return apperror.NotFound("share", userID)
		}
		m.uploads[i].SharedWith = slices.Delete(m.uploads[i].SharedWith, idx, idx+1)
		return nil
	}
	return apperror.NotFound("upload", uploadID)
}

// ListShareUsers needs a user table to resolve against; tests that exercise
// it set resolveUsers to the companion mockUserRepo.
func (m *mockUploadRepo) ListShareUsers(ctx context.Context, uploadID string) ([]model.User, error) {
	upload, err := m.GetByID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if m.resolveUsers == nil {
		return nil, nil
	}
	var result []model.User
	for _, id := range upload.SharedWith {
		u, err := m.resolveUsers.GetByID(ctx, id)
		if err != nil {
			// Dangling ID: the user was deleted, skip it.
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// session

type mockSessionRepo struct {
	current *model.User
}

var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{}
}

func (m *mockSessionRepo) Set(_ context.Context, user *model.User) error {
	snapshot := *user
	m.current = &snapshot
	return nil
}

func (m *mockSessionRepo) Get(_ context.Context) (*model.User, error) {
	if m.current == nil {
		return nil, apperror.NotFound("session", "current")
	}
	result := *m.current
	return &result, nil
}

func (m *mockSessionRepo) Clear(_ context.Context) error {
	m.current = nil
	return nil
}

// ---------------------------------------------------------------------------
// chat

type mockChatRepo struct {
	messages []model.ChatMessage
	nextID   int
}

var _ repository.ChatRepository = (*mockChatRepo)(nil)

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{}
}

func (m *mockChatRepo) Append(_ context.Context, msg *model.ChatMessage) error {
	m.nextID++
	msg.ID = fmt.Sprintf("msg-%d", m.nextID)
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockChatRepo) List(_ context.Context) ([]model.ChatMessage, error) {
	return slices.Clone(m.messages), nil
}
