package services

import (
	"context"
	"testing"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven/mocks"
)

func newTestConversationService() (*mocks.MockConversationStore, *mocks.MockConversationStore, *conversationService) {
	userConvs := mocks.NewMockConversationStore()
	guestConvs := mocks.NewMockConversationStore()
	svc := NewConversationService(userConvs, guestConvs).(*conversationService)
	return userConvs, guestConvs, svc
}

func seedConversation(t *testing.T, store *mocks.MockConversationStore, userID, guestID string, messages ...string) *domain.Conversation {
	t.Helper()
	conv := domain.NewConversation(userID, guestID)
	if err := store.Save(context.Background(), conv); err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	for i, content := range messages {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		msg := domain.NewMessage(conv.ID, role, content)
		if err := store.AppendMessage(context.Background(), msg); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
	return conv
}

func TestConversationService_List(t *testing.T) {
	userConvs, guestConvs, svc := newTestConversationService()

	seedConversation(t, userConvs, "user-1", "")
	seedConversation(t, userConvs, "user-1", "")
	seedConversation(t, userConvs, "user-2", "")
	seedConversation(t, guestConvs, "", "guest-1")

	convs, err := svc.List(context.Background(), userCaller(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(convs) != 2 {
		t.Errorf("expected 2 conversations for user-1, got %d", len(convs))
	}

	guestList, err := svc.List(context.Background(), guestCaller(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(guestList) != 1 {
		t.Errorf("expected 1 guest conversation, got %d", len(guestList))
	}
}

func TestConversationService_List_Unauthorized(t *testing.T) {
	_, _, svc := newTestConversationService()

	if _, err := svc.List(context.Background(), nil, 0, 0); err != domain.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized for nil caller, got %v", err)
	}
	if _, err := svc.List(context.Background(), &domain.AuthContext{}, 0, 0); err != domain.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized for anonymous caller, got %v", err)
	}
}

func TestConversationService_Get(t *testing.T) {
	userConvs, _, svc := newTestConversationService()

	conv := seedConversation(t, userConvs, "user-1", "", "hello", "hi there")

	got, err := svc.Get(context.Background(), userCaller(), conv.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Conversation.ID != conv.ID {
		t.Error("expected the requested conversation")
	}
	if len(got.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(got.Messages))
	}
}

func TestConversationService_Get_Ownership(t *testing.T) {
	userConvs, _, svc := newTestConversationService()

	conv := seedConversation(t, userConvs, "user-2", "")

	_, err := svc.Get(context.Background(), userCaller(), conv.ID)
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for foreign thread, got %v", err)
	}

	if _, err := svc.Get(context.Background(), userCaller(), ""); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty ID, got %v", err)
	}
}

func TestConversationService_Delete(t *testing.T) {
	userConvs, _, svc := newTestConversationService()

	conv := seedConversation(t, userConvs, "user-1", "", "hello")

	if err := svc.Delete(context.Background(), userCaller(), conv.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userConvs.Count() != 0 {
		t.Error("expected conversation to be removed")
	}

	if err := svc.Delete(context.Background(), userCaller(), conv.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for deleted thread, got %v", err)
	}
}

func TestConversationService_Delete_Ownership(t *testing.T) {
	_, guestConvs, svc := newTestConversationService()

	conv := seedConversation(t, guestConvs, "", "guest-2")

	err := svc.Delete(context.Background(), guestCaller(), conv.ID)
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for foreign guest thread, got %v", err)
	}
	if guestConvs.Count() != 1 {
		t.Error("expected foreign thread to survive")
	}
}
