package driven

import (
	"context"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// ConversationStore persists conversations and their messages.
// Signed-in traffic uses the PostgreSQL implementation; guests use the
// Redis implementation where threads expire with a TTL.
type ConversationStore interface {
	// Save creates or updates a conversation
	Save(ctx context.Context, conv *domain.Conversation) error

	// Get retrieves a conversation by ID
	Get(ctx context.Context, id string) (*domain.Conversation, error)

	// ListByOwner lists conversations for a user or guest, newest first
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Conversation, error)

	// Delete removes a conversation and its messages
	Delete(ctx context.Context, id string) error

	// AppendMessage adds a message to a conversation and bumps its UpdatedAt
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// GetMessages returns the most recent messages in chronological order.
	// limit <= 0 returns the full history.
	GetMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error)

	// UpdateTitle sets the conversation title
	UpdateTitle(ctx context.Context, id string, title string) error
}

// TTLStore is implemented by conversation stores whose threads expire.
// The settings service pushes guest TTL changes through it so an admin
// update takes effect without a restart.
type TTLStore interface {
	// SetTTL changes the TTL applied to subsequent writes
	SetTTL(ttl time.Duration)
}
