package driven

import (
	"context"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// Retriever is the keyword retrieval index over the knowledge document.
// Implementations hold one shared, lazily-initialized, read-mostly chunk
// set reused across requests.
type Retriever interface {
	// Initialize prepares the in-memory chunk cache. Idempotent and safe
	// under concurrent calls; a failed initialization surfaces its error
	// to every caller and is not retried.
	Initialize(ctx context.Context) error

	// Ready returns whether initialization has completed
	Ready() bool

	// Retrieve returns the topK highest-scoring chunks for the query.
	// Implicitly initializes when not ready. An empty result is a defined
	// outcome for queries with no signal, not an error.
	Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error)

	// ContextFor assembles the topK chunks into a prompt-context string,
	// falling back to a fixed message when nothing matched.
	ContextFor(ctx context.Context, query string, topK int) (string, error)
}
