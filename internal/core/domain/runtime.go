package domain

import "sync"

// RuntimeConfig tracks which services are available at runtime.
// This is determined at startup and can be updated dynamically when the
// LLM provider changes or the retrieval index finishes loading.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	SessionBackend string // "redis" or "postgres"
	GuestBackend   string // "redis" or "memory"

	// Dynamic capability flags
	llmAvailable   bool
	retrieverReady bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(sessionBackend, guestBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		SessionBackend: sessionBackend,
		GuestBackend:   guestBackend,
	}
}

// LLMAvailable returns whether an LLM service is configured and reachable
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// RetrieverReady returns whether the retrieval index has been initialized
func (c *RuntimeConfig) RetrieverReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.retrieverReady
}

// SetRetrieverReady updates the retriever readiness flag
func (c *RuntimeConfig) SetRetrieverReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retrieverReady = ready
}

// CanChat returns true if chat requests can be served
func (c *RuntimeConfig) CanChat() bool {
	return c.LLMAvailable()
}

// CanAugment returns true if chat prompts can be RAG-augmented
func (c *RuntimeConfig) CanAugment() bool {
	return c.RetrieverReady()
}
