package services

import (
	"context"
	"testing"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven/mocks"
	"github.com/campushq/campuschat-core/internal/core/ports/driving"
)

func newTestUserService() (*mocks.MockUserStore, *mocks.MockSessionStore, *userService) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	authAdapter := mocks.NewMockAuthAdapter()
	svc := NewUserService(userStore, sessionStore, authAdapter).(*userService)
	return userStore, sessionStore, svc
}

func createReq(email, password, name string, role domain.Role) driving.CreateUserRequest {
	return driving.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     role,
	}
}

func TestUserService_Setup(t *testing.T) {
	userStore, _, svc := newTestUserService()

	// Setup with empty fields fails
	_, err := svc.Setup(context.Background(), driving.SetupRequest{Email: "", Password: "pw", Name: "Admin"})
	if err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	// First setup creates the admin
	resp, err := svc.Setup(context.Background(), driving.SetupRequest{
		Email:    "admin@example.com",
		Password: "password123",
		Name:     "Admin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", resp.User.Role)
	}

	// Second setup is rejected once a user exists
	_, err = svc.Setup(context.Background(), driving.SetupRequest{
		Email:    "other@example.com",
		Password: "password123",
		Name:     "Other",
	})
	if err != domain.ErrForbidden {
		t.Errorf("expected ErrForbidden for repeated setup, got %v", err)
	}

	count, _ := userStore.Count(context.Background())
	if count != 1 {
		t.Errorf("expected 1 user after setup, got %d", count)
	}
}

func TestUserService_Create(t *testing.T) {
	_, _, svc := newTestUserService()

	tests := []struct {
		name    string
		req     driving.CreateUserRequest
		wantErr error
	}{
		{"valid member", createReq("member@example.com", "pw", "Member", domain.RoleMember), nil},
		{"valid admin", createReq("admin@example.com", "pw", "Admin", domain.RoleAdmin), nil},
		{"empty email", createReq("", "pw", "Name", domain.RoleMember), domain.ErrInvalidInput},
		{"empty password", createReq("a@example.com", "", "Name", domain.RoleMember), domain.ErrInvalidInput},
		{"empty name", createReq("b@example.com", "pw", "", domain.RoleMember), domain.ErrInvalidInput},
		{"invalid role", createReq("c@example.com", "pw", "Name", domain.Role("owner")), domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Create(context.Background(), tt.req)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID == "" {
				t.Error("expected generated ID")
			}
			if !user.Active {
				t.Error("expected new user to be active")
			}
		})
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	_, _, svc := newTestUserService()

	_, err := svc.Create(context.Background(), createReq("dup@example.com", "pw", "First", domain.RoleMember))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Create(context.Background(), createReq("dup@example.com", "pw", "Second", domain.RoleMember))
	if err != domain.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserService_Create_NormalizesEmail(t *testing.T) {
	_, _, svc := newTestUserService()

	user, err := svc.Create(context.Background(), createReq("  Mixed@Example.COM ", "pw", " Spaced Name ", domain.RoleMember))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "mixed@example.com" {
		t.Errorf("expected lowercased trimmed email, got %q", user.Email)
	}
	if user.Name != "Spaced Name" {
		t.Errorf("expected trimmed name, got %q", user.Name)
	}
}

func TestUserService_Update(t *testing.T) {
	_, sessionStore, svc := newTestUserService()

	user, _ := svc.Create(context.Background(), createReq("u@example.com", "pw", "User", domain.RoleMember))

	newName := "Renamed"
	updated, err := svc.Update(context.Background(), user.ID, driving.UpdateUserRequest{Name: &newName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("expected name Renamed, got %s", updated.Name)
	}

	// Deactivating invalidates sessions
	session := &domain.Session{
		ID:        "session-1",
		UserID:    user.ID,
		Token:     "token-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	_ = sessionStore.Save(context.Background(), session)

	inactive := false
	_, err = svc.Update(context.Background(), user.ID, driving.UpdateUserRequest{Active: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sessionStore.Get(context.Background(), "session-1"); err != domain.ErrSessionNotFound {
		t.Error("expected sessions to be invalidated after deactivation")
	}
}

func TestUserService_Update_NotFound(t *testing.T) {
	_, _, svc := newTestUserService()

	name := "X"
	_, err := svc.Update(context.Background(), "missing", driving.UpdateUserRequest{Name: &name})
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	userStore, sessionStore, svc := newTestUserService()

	user, _ := svc.Create(context.Background(), createReq("del@example.com", "pw", "Doomed", domain.RoleMember))

	session := &domain.Session{
		ID:        "session-del",
		UserID:    user.ID,
		Token:     "token-del",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	_ = sessionStore.Save(context.Background(), session)

	if err := svc.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := userStore.Get(context.Background(), user.ID); err != domain.ErrNotFound {
		t.Error("expected user to be deleted")
	}
	if _, err := sessionStore.Get(context.Background(), "session-del"); err != domain.ErrSessionNotFound {
		t.Error("expected sessions to be deleted with the user")
	}
}

func TestUserService_SetPassword(t *testing.T) {
	_, sessionStore, svc := newTestUserService()

	user, _ := svc.Create(context.Background(), createReq("pw@example.com", "old", "PW User", domain.RoleMember))

	if err := svc.SetPassword(context.Background(), user.ID, ""); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty password, got %v", err)
	}

	session := &domain.Session{
		ID:        "session-pw",
		UserID:    user.ID,
		Token:     "token-pw",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	_ = sessionStore.Save(context.Background(), session)

	if err := svc.SetPassword(context.Background(), user.ID, "newpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mock hasher stores plain text
	updated, _ := svc.Get(context.Background(), user.ID)
	if updated.PasswordHash != "newpassword" {
		t.Error("expected password hash to be updated")
	}
	if _, err := sessionStore.Get(context.Background(), "session-pw"); err != domain.ErrSessionNotFound {
		t.Error("expected sessions to be invalidated after password reset")
	}
}

func TestUserService_List(t *testing.T) {
	_, _, svc := newTestUserService()

	_, _ = svc.Create(context.Background(), createReq("one@example.com", "pw", "One", domain.RoleMember))
	_, _ = svc.Create(context.Background(), createReq("two@example.com", "pw", "Two", domain.RoleAdmin))

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}
