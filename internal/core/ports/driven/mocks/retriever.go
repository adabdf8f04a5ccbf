package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Ensure MockRetriever implements Retriever
var _ driven.Retriever = (*MockRetriever)(nil)

// MockRetriever is a mock implementation of Retriever for testing.
// It returns canned chunks for any query, or nothing when empty.
type MockRetriever struct {
	mu       sync.Mutex
	chunks   []domain.DocumentChunk
	initErr  error
	ready    bool
	queries  []string
	fallback string
}

// NewMockRetriever creates a new MockRetriever
func NewMockRetriever() *MockRetriever {
	return &MockRetriever{
		ready:    true,
		fallback: "no relevant information found",
	}
}

func (m *MockRetriever) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return m.initErr
	}
	m.ready = true
	return nil
}

func (m *MockRetriever) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initErr != nil {
		return nil, m.initErr
	}
	m.queries = append(m.queries, query)

	result := &domain.RetrievalResult{Query: query}
	for i, chunk := range m.chunks {
		if topK > 0 && len(result.Chunks) >= topK {
			break
		}
		result.Chunks = append(result.Chunks, chunk)
		result.Scores = append(result.Scores, float64(len(m.chunks)-i))
	}
	return result, nil
}

func (m *MockRetriever) ContextFor(ctx context.Context, query string, topK int) (string, error) {
	result, err := m.Retrieve(ctx, query, topK)
	if err != nil {
		return "", err
	}
	if result.IsEmpty() {
		return m.fallback, nil
	}
	var parts []string
	for _, c := range result.Chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Helper methods for testing

func (m *MockRetriever) SetChunks(chunks ...domain.DocumentChunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = chunks
}

func (m *MockRetriever) SetInitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initErr = err
	m.ready = false
}

func (m *MockRetriever) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries
}
