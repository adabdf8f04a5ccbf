package driven

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// SessionStore persists interactive sign-in sessions for staff and admin
// accounts. Guests never get sessions; their identity is a client-minted
// header. Redis is the preferred backend so expiry is storage-level; the
// PostgreSQL implementation covers deployments without Redis.
type SessionStore interface {
	// Save stores a session until its ExpiresAt
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*domain.Session, error)

	// GetByRefreshToken retrieves a session by refresh token value
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)

	// Delete removes a session. Deleting a session that is already gone
	// is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every session a user holds (logout everywhere,
	// password change, account disabled)
	DeleteByUser(ctx context.Context, userID string) error
}
