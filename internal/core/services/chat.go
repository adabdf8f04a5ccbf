package services

import (
	"context"
	"log"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
	"github.com/campushq/campuschat-core/internal/core/ports/driving"
	"github.com/campushq/campuschat-core/internal/runtime"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// systemPrompt frames every conversation. The retrieval context, when
// present, is appended to it as a second system message.
const systemPrompt = "You are the school's virtual assistant. Answer questions " +
	"about admissions, programmes, fees and campus life. Be concise and " +
	"friendly. When excerpts from the school guide are provided, base your " +
	"answer on them."

// chatService implements the ChatService interface
type chatService struct {
	services      *runtime.Services
	retriever     driven.Retriever
	settingsStore driven.SettingsStore
	userConvs     driven.ConversationStore
	guestConvs    driven.ConversationStore
	taskQueue     driven.TaskQueue // may be nil
}

// NewChatService creates a new ChatService
func NewChatService(
	services *runtime.Services,
	retriever driven.Retriever,
	settingsStore driven.SettingsStore,
	userConvs driven.ConversationStore,
	guestConvs driven.ConversationStore,
	taskQueue driven.TaskQueue,
) driving.ChatService {
	return &chatService{
		services:      services,
		retriever:     retriever,
		settingsStore: settingsStore,
		userConvs:     userConvs,
		guestConvs:    guestConvs,
		taskQueue:     taskQueue,
	}
}

// Send handles one chat turn and returns the assistant response
func (s *chatService) Send(ctx context.Context, caller *domain.AuthContext, req domain.ChatRequest) (*domain.ChatResponse, error) {
	turn, err := s.prepare(ctx, caller, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := turn.llm.Chat(ctx, turn.messages, turn.opts)
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, turn, reply, time.Since(start))
}

// SendStream handles one chat turn, streaming the assistant response
// through fn before persisting it
func (s *chatService) SendStream(ctx context.Context, caller *domain.AuthContext, req domain.ChatRequest, fn func(domain.StreamDelta) error) (*domain.ChatResponse, error) {
	turn, err := s.prepare(ctx, caller, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := turn.llm.ChatStream(ctx, turn.messages, turn.opts, func(delta domain.StreamDelta) error {
		delta.ConversationID = turn.conv.ID
		return fn(delta)
	})
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, turn, reply, time.Since(start))
}

// Retrieve exposes the underlying keyword retrieval for introspection
func (s *chatService) Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error) {
	if query == "" {
		return nil, domain.ErrInvalidInput
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return s.retriever.Retrieve(ctx, query, topK)
}

// chatTurn carries everything resolved for one turn between prepare and finish
type chatTurn struct {
	llm         driven.LLMService
	store       driven.ConversationStore
	conv        *domain.Conversation
	messages    []domain.ChatMessage
	opts        domain.ChatOptions
	contextUsed bool
	isNew       bool
}

// prepare validates the request, resolves the conversation and builds the
// provider message list (system prompt, optional retrieval context, history
// window, user message). The user message is persisted before the provider
// call so a failed completion still leaves the turn in history.
func (s *chatService) prepare(ctx context.Context, caller *domain.AuthContext, req domain.ChatRequest) (*chatTurn, error) {
	if caller == nil || (caller.UserID == "" && caller.GuestID == "") {
		return nil, domain.ErrUnauthorized
	}
	if req.Message == "" {
		return nil, domain.ErrInvalidInput
	}

	llm := s.services.LLMService()
	if llm == nil {
		return nil, domain.ErrProviderNotConfigured
	}

	// A per-turn provider override only works when it names the provider
	// that is actually configured; we hold one set of credentials.
	if req.Provider != "" {
		if !req.Provider.IsValid() {
			return nil, domain.ErrInvalidProvider
		}
		if req.Provider != llm.Provider() {
			return nil, domain.ErrProviderNotConfigured
		}
	}

	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		settings = domain.DefaultChatSettings()
	}

	store := s.storeFor(caller)
	conv, isNew, err := s.resolveConversation(ctx, caller, store, req.ConversationID)
	if err != nil {
		return nil, err
	}

	messages := []domain.ChatMessage{{Role: domain.RoleSystem, Content: systemPrompt}}

	// RAG augmentation degrades gracefully: a retrieval failure is logged
	// and the turn proceeds without context.
	contextUsed := false
	if s.useRAG(settings, req.UseRAG) {
		excerpt, err := s.retriever.ContextFor(ctx, req.Message, settings.RAGTopK)
		if err != nil {
			log.Printf("chat: retrieval failed, continuing without context: %v", err)
		} else if excerpt != "" {
			messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: excerpt})
			contextUsed = true
		}
	}

	if settings.HistoryWindow > 0 {
		history, err := store.GetMessages(ctx, conv.ID, settings.HistoryWindow)
		if err != nil {
			return nil, err
		}
		for _, msg := range history {
			messages = append(messages, domain.ChatMessage{Role: msg.Role, Content: msg.Content})
		}
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: req.Message})

	userMsg := domain.NewMessage(conv.ID, domain.RoleUser, req.Message)
	if err := store.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	return &chatTurn{
		llm:      llm,
		store:    store,
		conv:     conv,
		messages: messages,
		opts: domain.ChatOptions{
			Model:       settings.LLM.Model,
			Temperature: settings.Temperature,
			MaxTokens:   settings.MaxTokens,
		},
		contextUsed: contextUsed,
		isNew:       isNew,
	}, nil
}

// finish persists the assistant reply and, for a brand-new conversation,
// queues background title generation
func (s *chatService) finish(ctx context.Context, turn *chatTurn, reply string, took time.Duration) (*domain.ChatResponse, error) {
	assistantMsg := domain.NewMessage(turn.conv.ID, domain.RoleAssistant, reply)
	assistantMsg.Provider = turn.llm.Provider()
	if err := turn.store.AppendMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}

	if turn.isNew && s.taskQueue != nil {
		task := domain.NewTitleTask(turn.conv.ID, turn.conv.GuestID)
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			log.Printf("chat: failed to enqueue title task for %s: %v", turn.conv.ID, err)
		}
	}

	return &domain.ChatResponse{
		ConversationID: turn.conv.ID,
		Message:        assistantMsg,
		Provider:       turn.llm.Provider(),
		ContextUsed:    turn.contextUsed,
		Took:           took,
	}, nil
}

// storeFor routes guests to the TTL-backed store and users to PostgreSQL
func (s *chatService) storeFor(caller *domain.AuthContext) driven.ConversationStore {
	if caller.IsGuest() {
		return s.guestConvs
	}
	return s.userConvs
}

// resolveConversation loads and ownership-checks an existing thread, or
// starts a new one
func (s *chatService) resolveConversation(ctx context.Context, caller *domain.AuthContext, store driven.ConversationStore, id string) (*domain.Conversation, bool, error) {
	if id == "" {
		conv := domain.NewConversation(caller.UserID, caller.GuestID)
		if err := store.Save(ctx, conv); err != nil {
			return nil, false, err
		}
		return conv, true, nil
	}

	conv, err := store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !ownsConversation(caller, conv) {
		return nil, false, domain.ErrNotFound
	}
	return conv, false, nil
}

// useRAG applies the per-turn override on top of the configured default
func (s *chatService) useRAG(settings *domain.ChatSettings, override *bool) bool {
	enabled := settings.RAGEnabled
	if override != nil {
		enabled = *override
	}
	return enabled && s.services.Config().CanAugment()
}

// ownsConversation checks that the caller owns the thread. Not-found is
// returned on mismatch so thread IDs are not probeable.
func ownsConversation(caller *domain.AuthContext, conv *domain.Conversation) bool {
	if caller.IsGuest() {
		return conv.GuestID != "" && conv.GuestID == caller.GuestID
	}
	return conv.UserID != "" && conv.UserID == caller.UserID
}
