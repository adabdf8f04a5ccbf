package services

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
	"github.com/campushq/campuschat-core/internal/core/ports/driving"
)

// Ensure conversationService implements ConversationService
var _ driving.ConversationService = (*conversationService)(nil)

const defaultListLimit = 50

// conversationService implements the ConversationService interface
type conversationService struct {
	userConvs  driven.ConversationStore
	guestConvs driven.ConversationStore
}

// NewConversationService creates a new ConversationService
func NewConversationService(userConvs, guestConvs driven.ConversationStore) driving.ConversationService {
	return &conversationService{
		userConvs:  userConvs,
		guestConvs: guestConvs,
	}
}

// List returns the caller's conversations, newest first
func (s *conversationService) List(ctx context.Context, caller *domain.AuthContext, limit, offset int) ([]*domain.Conversation, error) {
	store, ownerID, err := s.resolve(caller)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return store.ListByOwner(ctx, ownerID, limit, offset)
}

// Get returns one conversation with its messages
func (s *conversationService) Get(ctx context.Context, caller *domain.AuthContext, id string) (*domain.ConversationWithMessages, error) {
	store, _, err := s.resolve(caller)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	conv, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ownsConversation(caller, conv) {
		return nil, domain.ErrNotFound
	}

	messages, err := store.GetMessages(ctx, conv.ID, 0)
	if err != nil {
		return nil, err
	}

	return &domain.ConversationWithMessages{
		Conversation: conv,
		Messages:     messages,
	}, nil
}

// Delete removes a conversation the caller owns
func (s *conversationService) Delete(ctx context.Context, caller *domain.AuthContext, id string) error {
	store, _, err := s.resolve(caller)
	if err != nil {
		return err
	}
	if id == "" {
		return domain.ErrInvalidInput
	}

	conv, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ownsConversation(caller, conv) {
		return domain.ErrNotFound
	}

	return store.Delete(ctx, id)
}

// resolve picks the backing store and owner key for the caller
func (s *conversationService) resolve(caller *domain.AuthContext) (driven.ConversationStore, string, error) {
	if caller == nil || (caller.UserID == "" && caller.GuestID == "") {
		return nil, "", domain.ErrUnauthorized
	}
	if caller.IsGuest() {
		return s.guestConvs, caller.GuestID, nil
	}
	return s.userConvs, caller.UserID, nil
}
