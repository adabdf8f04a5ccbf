package ai

import (
	"fmt"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Ensure Factory implements LLMFactory
var _ driven.LLMFactory = (*Factory)(nil)

// Factory creates LLM services based on configuration
type Factory struct{}

// NewFactory creates a new LLM service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateLLMService creates an LLM service from settings.
// Returns nil (no error) when settings are not configured.
func (f *Factory) CreateLLMService(settings *domain.ProviderSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.LLMProviderOpenAI:
		return NewOpenAILLM(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.LLMProviderGroq:
		return NewGroqLLM(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.LLMProviderHuggingFace:
		return NewHuggingFaceLLM(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
