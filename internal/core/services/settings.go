package services

import (
	"context"
	"strings"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
	"github.com/campushq/campuschat-core/internal/core/ports/driving"
	"github.com/campushq/campuschat-core/internal/runtime"
)

// Ensure settingsService implements SettingsService
var _ driving.SettingsService = (*settingsService)(nil)

// settingsService implements the SettingsService interface
type settingsService struct {
	settingsStore driven.SettingsStore
	llmFactory    driven.LLMFactory
	services      *runtime.Services
	guestTTL      driven.TTLStore // may be nil
}

// NewSettingsService creates a new SettingsService. guestTTL is the live
// guest conversation store; TTL updates are pushed to it so they apply to
// threads written after the change, not just after a restart.
func NewSettingsService(
	settingsStore driven.SettingsStore,
	llmFactory driven.LLMFactory,
	services *runtime.Services,
	guestTTL driven.TTLStore,
) driving.SettingsService {
	return &settingsService{
		settingsStore: settingsStore,
		llmFactory:    llmFactory,
		services:      services,
		guestTTL:      guestTTL,
	}
}

// Get retrieves the current chat settings
func (s *settingsService) Get(ctx context.Context) (*domain.ChatSettings, error) {
	return s.settingsStore.Get(ctx)
}

// Update updates settings; provider changes rebuild and hot-swap the
// active LLM service after a connectivity check
func (s *settingsService) Update(ctx context.Context, updaterID string, req driving.UpdateChatSettingsRequest) (*domain.ChatSettings, error) {
	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		settings = domain.DefaultChatSettings()
	}

	providerChanged := false

	// Apply provider updates
	if req.Provider != nil {
		if !req.Provider.IsValid() {
			return nil, domain.ErrInvalidProvider
		}
		if settings.LLM.Provider != *req.Provider {
			settings.LLM.Provider = *req.Provider
			settings.LLM.Model = domain.DefaultModelFor(*req.Provider)
			settings.LLM.BaseURL = ""
			providerChanged = true
		}
	}
	if req.Model != nil && strings.TrimSpace(*req.Model) != "" {
		settings.LLM.Model = strings.TrimSpace(*req.Model)
		providerChanged = true
	}
	if req.APIKey != nil && *req.APIKey != "" {
		settings.LLM.APIKey = *req.APIKey
		providerChanged = true
	}
	if req.BaseURL != nil {
		settings.LLM.BaseURL = strings.TrimSpace(*req.BaseURL)
		providerChanged = true
	}

	// Apply completion defaults
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > 2 {
			return nil, domain.ErrInvalidInput
		}
		settings.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		if *req.MaxTokens <= 0 {
			return nil, domain.ErrInvalidInput
		}
		settings.MaxTokens = *req.MaxTokens
	}
	if req.HistoryWindow != nil {
		if *req.HistoryWindow < 0 {
			return nil, domain.ErrInvalidInput
		}
		settings.HistoryWindow = *req.HistoryWindow
	}

	// Apply RAG configuration
	if req.RAGEnabled != nil {
		settings.RAGEnabled = *req.RAGEnabled
	}
	if req.RAGTopK != nil {
		if *req.RAGTopK <= 0 {
			return nil, domain.ErrInvalidInput
		}
		settings.RAGTopK = *req.RAGTopK
	}
	if req.GuestTTLHours != nil {
		if *req.GuestTTLHours <= 0 {
			return nil, domain.ErrInvalidInput
		}
		settings.GuestTTLHours = *req.GuestTTLHours
	}

	settings.UpdatedAt = time.Now()
	settings.UpdatedBy = updaterID

	if err := s.settingsStore.Save(ctx, settings); err != nil {
		return nil, err
	}

	// Push the new guest TTL to the live store
	if req.GuestTTLHours != nil && s.guestTTL != nil {
		s.guestTTL.SetTTL(time.Duration(settings.GuestTTLHours) * time.Hour)
	}

	// Hot-swap the LLM service when the provider config changed
	if providerChanged {
		if err := s.rebuildLLM(ctx, settings); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// rebuildLLM creates a fresh LLM service from settings and swaps it in
// after a connectivity check. An unconfigured provider clears the service.
func (s *settingsService) rebuildLLM(ctx context.Context, settings *domain.ChatSettings) error {
	if !settings.LLM.IsConfigured() {
		s.services.SetLLMService(nil)
		return domain.ErrProviderNotConfigured
	}

	svc, err := s.llmFactory.CreateLLMService(&settings.LLM)
	if err != nil {
		return err
	}

	return s.services.ValidateAndSetLLM(ctx, svc)
}

// Status returns the current capability status
func (s *settingsService) Status(ctx context.Context) (*driving.ChatStatus, error) {
	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		return nil, err
	}

	status := &driving.ChatStatus{
		Provider:       settings.LLM.Provider,
		Model:          settings.LLM.Model,
		LLMAvailable:   s.services.Config().LLMAvailable(),
		RetrieverReady: s.services.Config().RetrieverReady(),
		RAGEnabled:     settings.RAGEnabled,
	}

	if svc := s.services.LLMService(); svc != nil {
		status.Provider = svc.Provider()
		status.Model = svc.Model()
	}

	return status, nil
}

// TestConnection pings the configured LLM provider
func (s *settingsService) TestConnection(ctx context.Context) error {
	svc := s.services.LLMService()
	if svc == nil {
		return domain.ErrProviderNotConfigured
	}
	return svc.Ping(ctx)
}
