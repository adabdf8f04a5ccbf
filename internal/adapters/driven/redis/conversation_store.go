package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

const (
	convPrefix      = "conv:"
	convMsgsPrefix  = "conv:msgs:"
	convOwnerPrefix = "conv:guest:"
)

// ConversationStore implements driven.ConversationStore using Redis.
// Every key carries the same TTL, refreshed on write, so an abandoned
// guest conversation disappears whole.
type ConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConversationStore creates a Redis-backed ConversationStore with the
// given thread TTL
func NewConversationStore(client *redis.Client, ttl time.Duration) *ConversationStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ConversationStore{client: client, ttl: ttl}
}

// SetTTL changes the TTL applied to subsequent writes
func (s *ConversationStore) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// Save creates or updates a conversation
func (s *ConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, convPrefix+conv.ID, data, s.ttl)
	if conv.GuestID != "" {
		pipe.SAdd(ctx, convOwnerPrefix+conv.GuestID, conv.ID)
		pipe.Expire(ctx, convOwnerPrefix+conv.GuestID, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// Get retrieves a conversation by ID
func (s *ConversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	data, err := s.client.Get(ctx, convPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conv, nil
}

// ListByOwner lists conversations for a guest, newest first
func (s *ConversationStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Conversation, error) {
	ids, err := s.client.SMembers(ctx, convOwnerPrefix+ownerID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list guest conversations: %w", err)
	}

	var convs []*domain.Conversation
	var expired []string

	for _, id := range ids {
		conv, err := s.Get(ctx, id)
		if err == domain.ErrNotFound {
			expired = append(expired, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}

	// Drop expired IDs from the owner set
	if len(expired) > 0 {
		s.client.SRem(ctx, convOwnerPrefix+ownerID, expired)
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	if offset >= len(convs) {
		return nil, nil
	}
	convs = convs[offset:]
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

// Delete removes a conversation and its messages
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	conv, err := s.Get(ctx, id)
	if err == domain.ErrNotFound {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, convPrefix+id)
	pipe.Del(ctx, convMsgsPrefix+id)
	if conv.GuestID != "" {
		pipe.SRem(ctx, convOwnerPrefix+conv.GuestID, id)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// AppendMessage adds a message to a conversation and bumps its UpdatedAt
func (s *ConversationStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	conv, err := s.Get(ctx, msg.ConversationID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	conv.UpdatedAt = time.Now()
	convData, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, convMsgsPrefix+msg.ConversationID, data)
	pipe.Expire(ctx, convMsgsPrefix+msg.ConversationID, s.ttl)
	pipe.Set(ctx, convPrefix+conv.ID, convData, s.ttl)
	if conv.GuestID != "" {
		pipe.Expire(ctx, convOwnerPrefix+conv.GuestID, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// GetMessages returns the most recent messages in chronological order.
// limit <= 0 returns the full history.
func (s *ConversationStore) GetMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	items, err := s.client.LRange(ctx, convMsgsPrefix+conversationID, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	msgs := make([]*domain.Message, 0, len(items))
	for _, item := range items {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// UpdateTitle sets the conversation title
func (s *ConversationStore) UpdateTitle(ctx context.Context, id string, title string) error {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	conv.Title = title
	conv.UpdatedAt = time.Now()
	return s.Save(ctx, conv)
}
