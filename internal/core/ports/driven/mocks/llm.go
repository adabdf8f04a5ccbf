package mocks

import (
	"context"
	"sync"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Ensure MockLLMService implements LLMService
var _ driven.LLMService = (*MockLLMService)(nil)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	mu        sync.Mutex
	provider  domain.LLMProvider
	model     string
	response  string
	chunks    []string
	failNext  error
	pingErr   error
	calls     []domain.ChatMessage
	callCount int
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		provider: domain.LLMProviderOpenAI,
		model:    "mock-model",
		response: "mock response",
	}
}

func (m *MockLLMService) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.calls = append(m.calls, messages...)
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return "", err
	}
	return m.response, nil
}

func (m *MockLLMService) ChatStream(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions, fn func(domain.StreamDelta) error) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, messages...)
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		m.mu.Unlock()
		return "", err
	}
	chunks := m.chunks
	response := m.response
	m.mu.Unlock()

	if len(chunks) == 0 {
		chunks = []string{response}
	}
	var full string
	for _, c := range chunks {
		full += c
		if err := fn(domain.StreamDelta{Content: c}); err != nil {
			return "", err
		}
	}
	if err := fn(domain.StreamDelta{Done: true}); err != nil {
		return "", err
	}
	return full, nil
}

func (m *MockLLMService) Provider() domain.LLMProvider {
	return m.provider
}

func (m *MockLLMService) Model() string {
	return m.model
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *MockLLMService) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockLLMService) SetResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
}

func (m *MockLLMService) SetChunks(chunks ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = chunks
}

func (m *MockLLMService) SetFailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *MockLLMService) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
}

func (m *MockLLMService) SetProvider(p domain.LLMProvider, model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provider = p
	m.model = model
}

// LastMessages returns the messages passed to the most recent call
func (m *MockLLMService) LastMessages() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockLLMService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.callCount = 0
	m.failNext = nil
}
