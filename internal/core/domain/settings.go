package domain

import "time"

// LLMProvider identifies the hosted model provider
type LLMProvider string

const (
	LLMProviderOpenAI      LLMProvider = "openai"
	LLMProviderGroq        LLMProvider = "groq"
	LLMProviderHuggingFace LLMProvider = "huggingface"
)

// RequiresAPIKey returns true if this provider requires an API key.
// All hosted providers do; the distinction is kept so a self-hosted
// provider can be added without touching callers.
func (p LLMProvider) RequiresAPIKey() bool {
	return true
}

// IsValid returns true if this is a known provider
func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMProviderOpenAI, LLMProviderGroq, LLMProviderHuggingFace:
		return true
	default:
		return false
	}
}

// AllProviders returns every provider the chat service can proxy to
func AllProviders() []LLMProvider {
	return []LLMProvider{
		LLMProviderOpenAI,
		LLMProviderGroq,
		LLMProviderHuggingFace,
	}
}

// ProviderSettings configures one LLM provider connection
type ProviderSettings struct {
	Provider LLMProvider `json:"provider"`
	Model    string      `json:"model"`
	APIKey   string      `json:"-"` // Never serialize
	BaseURL  string      `json:"base_url,omitempty"`
}

// IsConfigured returns true if the provider settings are usable
func (s *ProviderSettings) IsConfigured() bool {
	if s.Provider == "" {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// ChatSettings holds the instance-wide chat configuration.
// Updated at runtime via the admin API; provider changes rebuild the
// active LLM service.
type ChatSettings struct {
	LLM ProviderSettings `json:"llm"`

	// Completion defaults
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`

	// HistoryWindow is how many prior messages are replayed to the model
	HistoryWindow int `json:"history_window"`

	// RAG configuration
	RAGEnabled bool `json:"rag_enabled"`
	RAGTopK    int  `json:"rag_top_k"`

	// Guest conversations expire after this many hours in Redis
	GuestTTLHours int `json:"guest_ttl_hours"`

	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"` // User ID
}

// DefaultChatSettings returns sensible defaults for a fresh install
func DefaultChatSettings() *ChatSettings {
	return &ChatSettings{
		LLM: ProviderSettings{
			Provider: LLMProviderOpenAI,
			Model:    "gpt-4o-mini",
		},
		Temperature:   0.7,
		MaxTokens:     1024,
		HistoryWindow: 20,
		RAGEnabled:    true,
		RAGTopK:       DefaultTopK,
		GuestTTLHours: 24,
		UpdatedAt:     time.Now(),
	}
}

// DefaultModelFor returns the default completion model per provider
func DefaultModelFor(p LLMProvider) string {
	switch p {
	case LLMProviderGroq:
		return "llama-3.3-70b-versatile"
	case LLMProviderHuggingFace:
		return "meta-llama/Llama-3.1-8B-Instruct"
	default:
		return "gpt-4o-mini"
	}
}
