package driving

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// ConversationService manages chat history for users and guests
type ConversationService interface {
	// List returns the caller's conversations, newest first
	List(ctx context.Context, caller *domain.AuthContext, limit, offset int) ([]*domain.Conversation, error)

	// Get returns one conversation with its messages; callers can only
	// read their own threads
	Get(ctx context.Context, caller *domain.AuthContext, id string) (*domain.ConversationWithMessages, error)

	// Delete removes a conversation the caller owns
	Delete(ctx context.Context, caller *domain.AuthContext, id string) error
}
