package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserToSummary(t *testing.T) {
	now := time.Now()
	user := &User{
		ID:           "staff-registrar",
		Email:        "registrar@greenfield.edu",
		PasswordHash: "$2a$10$secret",
		Name:         "The Registrar",
		Role:         RoleMember,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  &now,
	}

	summary := user.ToSummary()

	if summary.ID != "staff-registrar" || summary.Email != "registrar@greenfield.edu" {
		t.Errorf("expected identity carried over, got %+v", summary)
	}
	if summary.Name != "The Registrar" || summary.Role != RoleMember || !summary.Active {
		t.Errorf("expected profile carried over, got %+v", summary)
	}
	if summary.LastLoginAt == nil {
		t.Error("expected LastLoginAt carried over")
	}
}

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	user := &User{ID: "staff-registrar", PasswordHash: "$2a$10$secret"}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
}

func TestUserPermissions(t *testing.T) {
	tests := []struct {
		name       string
		role       Role
		admin      bool
		manageable bool
	}{
		{"admin runs the school account", RoleAdmin, true, true},
		{"member only chats", RoleMember, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if user.IsAdmin() != tt.admin {
				t.Errorf("expected IsAdmin() = %v for role %s", tt.admin, tt.role)
			}
			if user.CanManageUsers() != tt.manageable {
				t.Errorf("expected CanManageUsers() = %v for role %s", tt.manageable, tt.role)
			}
		})
	}
}

func TestUserCanChat(t *testing.T) {
	// Deactivated accounts keep their role but lose access
	active := &User{Role: RoleMember, Active: true}
	if !active.CanChat() {
		t.Error("expected an active member to chat")
	}

	deactivated := &User{Role: RoleAdmin, Active: false}
	if deactivated.CanChat() {
		t.Error("expected a deactivated account locked out, admin or not")
	}
}
