package driven

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// UserStore persists staff accounts. PostgreSQL is the only production
// backend; the in-memory mock covers the service tests.
type UserStore interface {
	// Save creates or updates an account
	Save(ctx context.Context, user *domain.User) error

	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// Count feeds the first-run setup check
	Count(ctx context.Context) (int, error)

	Delete(ctx context.Context, id string) error

	// UpdateLastLogin stamps a successful sign-in
	UpdateLastLogin(ctx context.Context, id string) error
}
