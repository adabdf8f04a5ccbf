package mocks

import (
	"context"
	"sync"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Ensure MockSettingsStore implements SettingsStore
var _ driven.SettingsStore = (*MockSettingsStore)(nil)

// MockSettingsStore is a mock implementation of SettingsStore for testing
type MockSettingsStore struct {
	mu       sync.RWMutex
	settings *domain.ChatSettings
	failNext error
}

// NewMockSettingsStore creates a new MockSettingsStore
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{}
}

func (m *MockSettingsStore) Get(ctx context.Context) (*domain.ChatSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return domain.DefaultChatSettings(), nil
	}
	copied := *m.settings
	return &copied, nil
}

func (m *MockSettingsStore) Save(ctx context.Context, settings *domain.ChatSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	copied := *settings
	m.settings = &copied
	return nil
}

// Helper methods for testing

func (m *MockSettingsStore) SetFailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *MockSettingsStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = nil
	m.failNext = nil
}
