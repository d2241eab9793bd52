package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nisthasiemens/docshare/internal/apperror"
)

func newTestIdentityService() (*IdentityService, *mockUserRepo, *mockSessionRepo) {
	users := newMockUserRepo()
	sessions := newMockSessionRepo()
	return NewIdentityService(users, sessions, testLogger()), users, sessions
}

// registerTestUser registers a user through the service so the stored record
// went through the real validation path.
func registerTestUser(t *testing.T, s *IdentityService, name, email, password string) string {
	t.Helper()
	user, err := s.Register(context.Background(), name, email, password, password)
	if err != nil {
		t.Fatalf("failed to register test user %s: %v", email, err)
	}
	return user.ID
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestIdentityService()

	user, err := s.Register(context.Background(), "alice", "alice@gmail.com", "pass1234", "pass1234")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Register() returned user without ID")
	}
	if user.Password != "pass1234" {
		t.Errorf("Register() Password = %s, want pass1234", user.Password)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name            string
		userName        string
		email           string
		password        string
		confirmPassword string
	}{
		{"missing name", "", "alice@gmail.com", "pass", "pass"},
		{"missing email", "alice", "", "pass", "pass"},
		{"missing password", "alice", "alice@gmail.com", "", "pass"},
		{"missing confirmation", "alice", "alice@gmail.com", "pass", ""},
		{"wrong domain", "alice", "alice@example.com", "pass", "pass"},
		{"domain only", "alice", "@gmail.com", "pass", "pass"},
		{"password mismatch", "alice", "alice@gmail.com", "pass", "ssap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestIdentityService()
			_, err := s.Register(context.Background(), tt.userName, tt.email, tt.password, tt.confirmPassword)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _, _ := newTestIdentityService()

	registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")

	_, err := s.Register(context.Background(), "other alice", "alice@gmail.com", "different", "different")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Register() with taken email: error = %v, want ErrConflict", err)
	}
}

func TestLogin(t *testing.T) {
	s, _, sessions := newTestIdentityService()
	ctx := context.Background()

	id := registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")

	user, err := s.Login(ctx, "alice@gmail.com", "pass1234")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != id {
		t.Errorf("Login() ID = %s, want %s", user.ID, id)
	}

	// Login stores the snapshot.
	if sessions.current == nil || sessions.current.ID != id {
		t.Error("Login() did not store the session snapshot")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	s, _, _ := newTestIdentityService()

	_, err := s.Login(context.Background(), "nobody@gmail.com", "whatever")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Login() unknown email: error = %v, want ErrNotFound", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s, _, sessions := newTestIdentityService()

	registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")

	_, err := s.Login(context.Background(), "alice@gmail.com", "wrong")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Login() wrong password: error = %v, want ErrUnauthorized", err)
	}
	if sessions.current != nil {
		t.Error("failed Login() must not store a session")
	}
}

func TestLogout(t *testing.T) {
	s, _, sessions := newTestIdentityService()
	ctx := context.Background()

	registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")
	if _, err := s.Login(ctx, "alice@gmail.com", "pass1234"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if sessions.current != nil {
		t.Error("Logout() did not clear the session")
	}

	// Logging out twice is fine.
	if err := s.Logout(ctx); err != nil {
		t.Errorf("second Logout() error = %v, want nil", err)
	}
}

func TestCurrentUser_NotLoggedIn(t *testing.T) {
	s, _, _ := newTestIdentityService()

	_, err := s.CurrentUser(context.Background())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("CurrentUser() error = %v, want ErrNotFound", err)
	}
}

func TestEditUser(t *testing.T) {
	s, _, _ := newTestIdentityService()
	ctx := context.Background()

	id := registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")

	updated, err := s.EditUser(ctx, id, "alice cooper", "alice.cooper@gmail.com")
	if err != nil {
		t.Fatalf("EditUser() error = %v", err)
	}
	if updated.UserName != "alice cooper" || updated.Email != "alice.cooper@gmail.com" {
		t.Errorf("EditUser() = %+v, want updated name and email", updated)
	}
	// Password survives the edit untouched.
	if updated.Password != "pass1234" {
		t.Errorf("EditUser() Password = %s, want pass1234", updated.Password)
	}
}

func TestEditUser_KeepOwnEmail(t *testing.T) {
	s, _, _ := newTestIdentityService()

	id := registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")

	// Changing only the name while keeping the same email is not a conflict.
	_, err := s.EditUser(context.Background(), id, "alice cooper", "alice@gmail.com")
	if err != nil {
		t.Errorf("EditUser() keeping own email: error = %v, want nil", err)
	}
}

func TestEditUser_EmailTakenByOther(t *testing.T) {
	s, _, _ := newTestIdentityService()

	registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")
	bobID := registerTestUser(t, s, "bob", "bob@gmail.com", "pass5678")

	_, err := s.EditUser(context.Background(), bobID, "bob", "alice@gmail.com")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("EditUser() with taken email: error = %v, want ErrConflict", err)
	}
}

func TestDeleteUser(t *testing.T) {
	s, users, _ := newTestIdentityService()
	ctx := context.Background()

	id := registerTestUser(t, s, "alice", "alice@gmail.com", "pass1234")

	if err := s.DeleteUser(ctx, id); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := users.GetByID(ctx, id); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("DeleteUser() did not remove the user")
	}
}

func TestDeleteUser_AbsentIDIsNoOp(t *testing.T) {
	s, _, _ := newTestIdentityService()

	if err := s.DeleteUser(context.Background(), "no-such-id"); err != nil {
		t.Errorf("DeleteUser() absent ID: error = %v, want nil", err)
	}
}
