// Package memory provides in-process driven adapters used when no Redis
// instance is configured. Guest threads held here do not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

type conversationEntry struct {
	conv     domain.Conversation
	messages []domain.Message
	expires  time.Time
}

// ConversationStore implements driven.ConversationStore with mutex-guarded
// maps. It keeps the Redis store's TTL semantics: every write refreshes the
// thread's expiry, and expired threads vanish whole on the next access.
type ConversationStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	byID    map[string]*conversationEntry
	byGuest map[string]map[string]struct{}
}

// NewConversationStore creates an in-memory ConversationStore with the given
// thread TTL
func NewConversationStore(ttl time.Duration) *ConversationStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ConversationStore{
		ttl:     ttl,
		byID:    make(map[string]*conversationEntry),
		byGuest: make(map[string]map[string]struct{}),
	}
}

// SetTTL changes the TTL applied to subsequent writes
func (s *ConversationStore) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()
}

// live returns the entry for id, dropping it if its TTL has lapsed.
// Callers must hold s.mu.
func (s *ConversationStore) live(id string, now time.Time) *conversationEntry {
	e, ok := s.byID[id]
	if !ok {
		return nil
	}
	if now.After(e.expires) {
		s.evict(id, e)
		return nil
	}
	return e
}

func (s *ConversationStore) evict(id string, e *conversationEntry) {
	delete(s.byID, id)
	if e.conv.GuestID != "" {
		if set, ok := s.byGuest[e.conv.GuestID]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(s.byGuest, e.conv.GuestID)
			}
		}
	}
}

// Save creates or updates a conversation
func (s *ConversationStore) Save(ctx context.Context, conv *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e := s.live(conv.ID, now)
	if e == nil {
		e = &conversationEntry{}
		s.byID[conv.ID] = e
	}
	e.conv = *conv
	e.expires = now.Add(s.ttl)

	if conv.GuestID != "" {
		set, ok := s.byGuest[conv.GuestID]
		if !ok {
			set = make(map[string]struct{})
			s.byGuest[conv.GuestID] = set
		}
		set[conv.ID] = struct{}{}
	}
	return nil
}

// Get retrieves a conversation by ID
func (s *ConversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(id, time.Now())
	if e == nil {
		return nil, domain.ErrNotFound
	}
	conv := e.conv
	return &conv, nil
}

// ListByOwner lists conversations for a guest, newest first
func (s *ConversationStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var convs []*domain.Conversation
	for id := range s.byGuest[ownerID] {
		e := s.live(id, now)
		if e == nil {
			continue
		}
		conv := e.conv
		convs = append(convs, &conv)
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
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(id, time.Now())
	if e == nil {
		return domain.ErrNotFound
	}
	s.evict(id, e)
	return nil
}

// AppendMessage adds a message to a conversation and bumps its UpdatedAt
func (s *ConversationStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e := s.live(msg.ConversationID, now)
	if e == nil {
		return domain.ErrNotFound
	}
	e.messages = append(e.messages, *msg)
	e.conv.UpdatedAt = now
	e.expires = now.Add(s.ttl)
	return nil
}

// GetMessages returns the most recent messages in chronological order.
// limit <= 0 returns the full history.
func (s *ConversationStore) GetMessages(ctx context.Context, conversationID string, limit int) ([]*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(conversationID, time.Now())
	if e == nil {
		return nil, nil
	}

	start := 0
	if limit > 0 && len(e.messages) > limit {
		start = len(e.messages) - limit
	}

	msgs := make([]*domain.Message, 0, len(e.messages)-start)
	for i := start; i < len(e.messages); i++ {
		msg := e.messages[i]
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// UpdateTitle sets the conversation title
func (s *ConversationStore) UpdateTitle(ctx context.Context, id string, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e := s.live(id, now)
	if e == nil {
		return domain.ErrNotFound
	}
	e.conv.Title = title
	e.conv.UpdatedAt = now
	e.expires = now.Add(s.ttl)
	return nil
}
