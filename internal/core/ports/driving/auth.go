package driving

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// AuthService signs staff in and out. Guests never pass through here;
// their identity is a widget-minted header the middleware resolves.
type AuthService interface {
	// Authenticate checks credentials and opens a session
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)

	// ValidateToken verifies a JWT and confirms its session still exists
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)

	// RefreshToken rotates a session; the refresh token is single-use
	RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error)

	// Logout drops the session behind the token
	Logout(ctx context.Context, token string) error

	// LogoutAll drops every session a user holds
	LogoutAll(ctx context.Context, userID string) error

	// ChangePassword verifies the current password, sets the new one and
	// revokes all sessions
	ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
}
