package driving

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// CreateUserRequest adds a staff account
type CreateUserRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// UpdateUserRequest patches an account. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name   *string      `json:"name,omitempty"`
	Role   *domain.Role `json:"role,omitempty"`
	Active *bool        `json:"active,omitempty"`
}

// SetupRequest bootstraps the first admin on a fresh install
type SetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SetupResponse confirms the bootstrap
type SetupResponse struct {
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

// UserService manages the school's staff accounts. Everything except
// Setup sits behind the admin role at the HTTP layer.
type UserService interface {
	// Setup creates the first admin; it refuses once any account exists
	Setup(ctx context.Context, req SetupRequest) (*SetupResponse, error)

	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// Update applies the non-nil fields of req
	Update(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error)

	// Delete removes the account and revokes its sessions
	Delete(ctx context.Context, id string) error

	// SetPassword is the admin reset path; it also revokes sessions
	SetPassword(ctx context.Context, id string, password string) error
}
