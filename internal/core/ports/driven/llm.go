package driven

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// LLMService proxies chat completions to a hosted model provider
type LLMService interface {
	// Chat runs a single completion over the message history
	Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error)

	// ChatStream runs a completion and delivers the response incrementally.
	// fn is called once per delta in order; returning an error aborts the
	// stream. The full response text is returned after the stream ends.
	ChatStream(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions, fn func(domain.StreamDelta) error) (string, error)

	// Provider returns which provider this service talks to
	Provider() domain.LLMProvider

	// Model returns the model name being used
	Model() string

	// Ping verifies the provider is reachable with the configured key
	Ping(ctx context.Context) error

	// Close releases resources held by the service
	Close() error
}
