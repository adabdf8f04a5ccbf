package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven/mocks"
	"github.com/campushq/campuschat-core/internal/runtime"
)

type chatFixture struct {
	llm        *mocks.MockLLMService
	retriever  *mocks.MockRetriever
	settings   *mocks.MockSettingsStore
	userConvs  *mocks.MockConversationStore
	guestConvs *mocks.MockConversationStore
	queue      *mocks.MockTaskQueue
	services   *runtime.Services
	svc        *chatService
}

func newTestChatService() *chatFixture {
	f := &chatFixture{
		llm:        mocks.NewMockLLMService(),
		retriever:  mocks.NewMockRetriever(),
		settings:   mocks.NewMockSettingsStore(),
		userConvs:  mocks.NewMockConversationStore(),
		guestConvs: mocks.NewMockConversationStore(),
		queue:      mocks.NewMockTaskQueue(),
	}
	f.services = runtime.NewServices(domain.NewRuntimeConfig("redis", "redis"))
	f.services.SetLLMService(f.llm)
	f.services.Config().SetRetrieverReady(true)
	f.svc = NewChatService(f.services, f.retriever, f.settings, f.userConvs, f.guestConvs, f.queue).(*chatService)
	return f
}

func userCaller() *domain.AuthContext {
	return &domain.AuthContext{UserID: "user-1", Email: "u@example.com", Role: domain.RoleMember}
}

func guestCaller() *domain.AuthContext {
	return &domain.AuthContext{GuestID: "guest-1"}
}

func TestChatService_Send_Validation(t *testing.T) {
	f := newTestChatService()

	tests := []struct {
		name    string
		caller  *domain.AuthContext
		req     domain.ChatRequest
		wantErr error
	}{
		{"nil caller", nil, domain.ChatRequest{Message: "hi"}, domain.ErrUnauthorized},
		{"anonymous caller", &domain.AuthContext{}, domain.ChatRequest{Message: "hi"}, domain.ErrUnauthorized},
		{"empty message", userCaller(), domain.ChatRequest{}, domain.ErrInvalidInput},
		{"unknown provider", userCaller(), domain.ChatRequest{Message: "hi", Provider: "bedrock"}, domain.ErrInvalidProvider},
		{"unconfigured provider override", userCaller(), domain.ChatRequest{Message: "hi", Provider: domain.LLMProviderGroq}, domain.ErrProviderNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Send(context.Background(), tt.caller, tt.req)
			if err != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestChatService_Send_NoLLMConfigured(t *testing.T) {
	f := newTestChatService()
	f.services.SetLLMService(nil)

	_, err := f.svc.Send(context.Background(), userCaller(), domain.ChatRequest{Message: "hi"})
	if err != domain.ErrProviderNotConfigured {
		t.Errorf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestChatService_Send_NewConversation(t *testing.T) {
	f := newTestChatService()
	f.llm.SetResponse("The admission deadline is March 1.")
	f.retriever.SetChunks(domain.DocumentChunk{
		ID:      "guide-0",
		Content: "Admissions close on March 1 every year.",
	})

	resp, err := f.svc.Send(context.Background(), userCaller(), domain.ChatRequest{
		Message: "When do admissions close?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.ConversationID == "" {
		t.Fatal("expected a conversation ID")
	}
	if resp.Message.Role != domain.RoleAssistant {
		t.Errorf("expected assistant message, got %s", resp.Message.Role)
	}
	if resp.Message.Content != "The admission deadline is March 1." {
		t.Errorf("unexpected reply content: %q", resp.Message.Content)
	}
	if !resp.ContextUsed {
		t.Error("expected retrieval context to be used")
	}

	// User and assistant turns persisted on the user store
	if f.userConvs.Count() != 1 {
		t.Errorf("expected 1 conversation, got %d", f.userConvs.Count())
	}
	if got := f.userConvs.MessageCount(resp.ConversationID); got != 2 {
		t.Errorf("expected 2 persisted messages, got %d", got)
	}

	// New conversation queues a title task
	if f.queue.Pending() != 1 {
		t.Errorf("expected 1 queued title task, got %d", f.queue.Pending())
	}
}

func TestChatService_Send_ExistingConversation(t *testing.T) {
	f := newTestChatService()
	caller := userCaller()

	first, err := f.svc.Send(context.Background(), caller, domain.ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.svc.Send(context.Background(), caller, domain.ChatRequest{
		ConversationID: first.ConversationID,
		Message:        "follow up",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.ConversationID != first.ConversationID {
		t.Error("expected the thread to continue")
	}
	if f.userConvs.Count() != 1 {
		t.Errorf("expected a single conversation, got %d", f.userConvs.Count())
	}
	if got := f.userConvs.MessageCount(first.ConversationID); got != 4 {
		t.Errorf("expected 4 persisted messages, got %d", got)
	}
	// Only the first turn queues a title task
	if f.queue.Pending() != 1 {
		t.Errorf("expected 1 queued title task, got %d", f.queue.Pending())
	}
}

func TestChatService_Send_OwnershipEnforced(t *testing.T) {
	f := newTestChatService()

	resp, err := f.svc.Send(context.Background(), userCaller(), domain.ChatRequest{Message: "mine"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := &domain.AuthContext{UserID: "user-2"}
	_, err = f.svc.Send(context.Background(), other, domain.ChatRequest{
		ConversationID: resp.ConversationID,
		Message:        "not mine",
	})
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for foreign thread, got %v", err)
	}
}

func TestChatService_Send_GuestUsesGuestStore(t *testing.T) {
	f := newTestChatService()

	resp, err := f.svc.Send(context.Background(), guestCaller(), domain.ChatRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.guestConvs.Count() != 1 {
		t.Errorf("expected guest conversation in guest store, got %d", f.guestConvs.Count())
	}
	if f.userConvs.Count() != 0 {
		t.Errorf("expected no conversations in user store, got %d", f.userConvs.Count())
	}

	conv, _ := f.guestConvs.Get(context.Background(), resp.ConversationID)
	if !conv.IsGuest() {
		t.Error("expected a guest-owned conversation")
	}
}

func TestChatService_Send_RAGDisabledByOverride(t *testing.T) {
	f := newTestChatService()
	f.retriever.SetChunks(domain.DocumentChunk{ID: "guide-0", Content: "ignored"})

	off := false
	resp, err := f.svc.Send(context.Background(), userCaller(), domain.ChatRequest{
		Message: "hi",
		UseRAG:  &off,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.ContextUsed {
		t.Error("expected no retrieval context with RAG disabled")
	}
	if len(f.retriever.Queries()) != 0 {
		t.Error("expected retriever not to be queried")
	}
}

func TestChatService_Send_RetrievalFailureDegrades(t *testing.T) {
	f := newTestChatService()
	f.retriever.SetInitError(errors.New("index load failed"))
	// The capability flag stays up so augmentation is attempted
	f.services.Config().SetRetrieverReady(true)

	resp, err := f.svc.Send(context.Background(), userCaller(), domain.ChatRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("expected turn to proceed without context, got %v", err)
	}
	if resp.ContextUsed {
		t.Error("expected no context after retrieval failure")
	}
}

func TestChatService_Send_LLMFailure(t *testing.T) {
	f := newTestChatService()
	f.llm.SetFailNext(errors.New("provider unavailable"))

	_, err := f.svc.Send(context.Background(), userCaller(), domain.ChatRequest{Message: "hi"})
	if err == nil {
		t.Fatal("expected provider error to surface")
	}

	// The user turn is still persisted
	if f.userConvs.Count() != 1 {
		t.Fatalf("expected conversation to exist, got %d", f.userConvs.Count())
	}
}

func TestChatService_SendStream(t *testing.T) {
	f := newTestChatService()
	f.llm.SetChunks("The ", "fee ", "is 500.")

	var deltas []domain.StreamDelta
	resp, err := f.svc.SendStream(context.Background(), userCaller(), domain.ChatRequest{Message: "fees?"}, func(d domain.StreamDelta) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Message.Content != "The fee is 500." {
		t.Errorf("expected assembled reply, got %q", resp.Message.Content)
	}
	if len(deltas) != 4 {
		t.Fatalf("expected 3 content deltas plus done, got %d", len(deltas))
	}
	if !deltas[len(deltas)-1].Done {
		t.Error("expected final delta to be marked done")
	}
	for _, d := range deltas {
		if d.ConversationID != resp.ConversationID {
			t.Error("expected every delta to carry the conversation ID")
		}
	}
	if got := f.userConvs.MessageCount(resp.ConversationID); got != 2 {
		t.Errorf("expected streamed reply to be persisted, got %d messages", got)
	}
}

func TestChatService_Retrieve(t *testing.T) {
	f := newTestChatService()
	f.retriever.SetChunks(
		domain.DocumentChunk{ID: "guide-0", Content: "Tuition is 500 per term."},
		domain.DocumentChunk{ID: "guide-1", Content: "Scholarships are available."},
	)

	if _, err := f.svc.Retrieve(context.Background(), "", 4); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty query, got %v", err)
	}

	result, err := f.svc.Retrieve(context.Background(), "tuition", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Errorf("expected topK to cap results, got %d", len(result.Chunks))
	}
}
