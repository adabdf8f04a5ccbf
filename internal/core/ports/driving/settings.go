package driving

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// UpdateChatSettingsRequest represents a request to update chat settings.
// Nil fields are left unchanged.
type UpdateChatSettingsRequest struct {
	Provider      *domain.LLMProvider `json:"provider,omitempty"`
	Model         *string             `json:"model,omitempty"`
	APIKey        *string             `json:"api_key,omitempty"`
	BaseURL       *string             `json:"base_url,omitempty"`
	Temperature   *float32            `json:"temperature,omitempty"`
	MaxTokens     *int                `json:"max_tokens,omitempty"`
	HistoryWindow *int                `json:"history_window,omitempty"`
	RAGEnabled    *bool               `json:"rag_enabled,omitempty"`
	RAGTopK       *int                `json:"rag_top_k,omitempty"`
	GuestTTLHours *int                `json:"guest_ttl_hours,omitempty"`
}

// ChatStatus reports which capabilities are live
type ChatStatus struct {
	Provider       domain.LLMProvider `json:"provider"`
	Model          string             `json:"model"`
	LLMAvailable   bool               `json:"llm_available"`
	RetrieverReady bool               `json:"retriever_ready"`
	RAGEnabled     bool               `json:"rag_enabled"`
}

// SettingsService manages chat settings (admin only)
type SettingsService interface {
	// Get retrieves the current chat settings
	Get(ctx context.Context) (*domain.ChatSettings, error)

	// Update updates settings; provider changes rebuild and hot-swap the
	// active LLM service after a connectivity check
	Update(ctx context.Context, updaterID string, req UpdateChatSettingsRequest) (*domain.ChatSettings, error)

	// Status returns the current capability status
	Status(ctx context.Context) (*ChatStatus, error)

	// TestConnection pings the configured LLM provider
	TestConnection(ctx context.Context) error
}
