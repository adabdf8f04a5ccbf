package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies who authored a message
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Conversation represents one chat thread.
// Exactly one of UserID / GuestID is set: signed-in conversations live in
// PostgreSQL, guest conversations live in Redis with a TTL.
type Conversation struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	GuestID   string      `json:"guest_id,omitempty"`
	Title     string      `json:"title"`
	Provider  LLMProvider `json:"provider,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsGuest reports whether the conversation belongs to an anonymous visitor
func (c *Conversation) IsGuest() bool {
	return c.UserID == "" && c.GuestID != ""
}

// NewConversation creates a conversation owned by either a user or a guest
func NewConversation(userID, guestID string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		GuestID:   guestID,
		Title:     "New conversation",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Message is a single turn within a conversation
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	Provider       LLMProvider `json:"provider,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewMessage creates a message for a conversation
func NewMessage(conversationID string, role MessageRole, content string) *Message {
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

// ConversationWithMessages combines a conversation with its messages
type ConversationWithMessages struct {
	Conversation *Conversation `json:"conversation"`
	Messages     []*Message    `json:"messages"`
}
