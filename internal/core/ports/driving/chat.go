package driving

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// ChatService orchestrates a chat turn: conversation resolution, optional
// RAG augmentation, the provider call, and persistence.
type ChatService interface {
	// Send handles one chat turn and returns the assistant response
	Send(ctx context.Context, caller *domain.AuthContext, req domain.ChatRequest) (*domain.ChatResponse, error)

	// SendStream handles one chat turn, delivering the assistant response
	// incrementally through fn (for SSE). The final persisted response is
	// returned after the stream completes.
	SendStream(ctx context.Context, caller *domain.AuthContext, req domain.ChatRequest, fn func(domain.StreamDelta) error) (*domain.ChatResponse, error)

	// Retrieve exposes the underlying keyword retrieval for introspection
	// (ranked chunks with scores)
	Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error)
}
