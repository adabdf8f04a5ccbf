package mocks

import (
	"sync"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Ensure MockLLMFactory implements LLMFactory
var _ driven.LLMFactory = (*MockLLMFactory)(nil)

// MockLLMFactory is a mock implementation of LLMFactory for testing
type MockLLMFactory struct {
	mu      sync.Mutex
	service driven.LLMService
	err     error
	created []domain.LLMProvider
}

// NewMockLLMFactory creates a new MockLLMFactory returning the given service
func NewMockLLMFactory(service driven.LLMService) *MockLLMFactory {
	return &MockLLMFactory{service: service}
}

func (m *MockLLMFactory) CreateLLMService(settings *domain.ProviderSettings) (driven.LLMService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	m.created = append(m.created, settings.Provider)
	return m.service, nil
}

// Helper methods for testing

func (m *MockLLMFactory) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockLLMFactory) Created() []domain.LLMProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}
