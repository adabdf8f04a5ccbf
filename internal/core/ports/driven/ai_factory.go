package driven

import "github.com/campushq/campuschat-core/internal/core/domain"

// LLMFactory creates LLM services from provider settings
type LLMFactory interface {
	// CreateLLMService creates an LLM service from settings.
	// Returns nil (no error) when settings are not configured.
	CreateLLMService(settings *domain.ProviderSettings) (LLMService, error)
}
