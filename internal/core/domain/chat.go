package domain

import "time"

// ChatRequest represents one user message sent to the chat endpoint
type ChatRequest struct {
	// ConversationID continues an existing thread; empty starts a new one
	ConversationID string `json:"conversation_id,omitempty"`

	// Message is the user's input (required, non-empty)
	Message string `json:"message"`

	// Provider optionally overrides the configured LLM provider for this turn
	Provider LLMProvider `json:"provider,omitempty"`

	// UseRAG optionally overrides the RAG setting for this turn
	UseRAG *bool `json:"use_rag,omitempty"`
}

// ChatResponse is returned for a non-streaming chat turn
type ChatResponse struct {
	ConversationID string        `json:"conversation_id"`
	Message        *Message      `json:"message"`
	Provider       LLMProvider   `json:"provider"`
	ContextUsed    bool          `json:"context_used"`
	Took           time.Duration `json:"took" swaggertype:"integer"`
}

// StreamDelta is one increment of a streamed assistant response
type StreamDelta struct {
	// Content is the text fragment (may be empty on the final delta)
	Content string `json:"content"`

	// Done marks the final delta of the stream
	Done bool `json:"done"`

	// ConversationID is set on every delta so new threads are addressable
	// before the stream completes
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatMessage is the provider-facing message shape handed to LLM services.
// It deliberately carries no IDs or timestamps - only what the completion
// APIs need.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatOptions tunes a single completion call
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}
