package runtime

import (
	"context"
	"sync"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Services is the registry for the one service that changes while the
// process runs: the LLM client. Admins swap providers through the
// settings API, so every reader goes through the registry instead of
// holding the client directly.
type Services struct {
	mu sync.RWMutex

	config     *domain.RuntimeConfig
	llmService driven.LLMService
}

// NewServices creates a registry with no LLM configured yet
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{config: config}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// LLMService returns the current LLM client, nil when none is configured
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// SetLLMService swaps the LLM client, closing the one it replaces and
// keeping the availability flag in step
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil {
		_ = s.llmService.Close()
	}
	s.llmService = svc
	s.config.SetLLMAvailable(svc != nil)
}

// ValidateAndSetLLM pings the candidate before swapping it in. A
// provider that does not answer is closed and rejected, and the live
// client keeps serving.
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetLLMService(svc)
	return nil
}

// Close shuts the registry down on process exit
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}
	s.config.SetLLMAvailable(false)
	return nil
}
