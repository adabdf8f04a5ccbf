package retrieval

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// Index is the in-memory keyword retrieval index over one source
// document. It is an explicit object rather than package state so tests
// and multi-document deployments can hold independent instances.
//
// Initialization is lazy and idempotent: the first caller (or the first
// concurrent group of callers) loads and chunks the document exactly
// once; everyone observes the same final chunk set. A failed
// initialization is not retried - the error is surfaced to every caller.
type Index struct {
	loader  Loader
	chunker *Chunker
	rules   []Rule
	topK    int

	once    sync.Once
	ready   atomic.Bool
	initErr error

	// chunks and lowered are written once inside the sync.Once and
	// read-only afterwards; lowered is the lowercased content cache the
	// scoring rules run against.
	chunks  []domain.DocumentChunk
	lowered []string
}

// Option configures an Index.
type Option func(*Index)

// WithRules replaces the default scoring rules.
func WithRules(rules []Rule) Option {
	return func(ix *Index) { ix.rules = rules }
}

// WithTopK sets the default number of chunks returned per retrieval.
func WithTopK(k int) Option {
	return func(ix *Index) {
		if k > 0 {
			ix.topK = k
		}
	}
}

// NewIndex creates an index over the given loader. The chunk
// configuration is validated here, before any document processing.
func NewIndex(loader Loader, cfg ChunkConfig, opts ...Option) (*Index, error) {
	chunker, err := NewChunker(cfg)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		loader:  loader,
		chunker: chunker,
		rules:   DefaultRules(DefaultVocabulary),
		topK:    domain.DefaultTopK,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Initialize loads and chunks the source document. Safe to call from
// concurrent requests during cold start; repeated calls are no-ops that
// return the first outcome.
func (ix *Index) Initialize(ctx context.Context) error {
	ix.once.Do(func() {
		text, source, err := ix.loader.Load(ctx)
		if err != nil {
			ix.initErr = err
			return
		}

		chunks, err := ix.chunker.Chunk(text, source)
		if err != nil {
			ix.initErr = err
			return
		}

		lowered := make([]string, len(chunks))
		for i, ch := range chunks {
			lowered[i] = strings.ToLower(ch.Content)
		}

		ix.chunks = chunks
		ix.lowered = lowered
		ix.ready.Store(true)
		log.Printf("retrieval index ready: %d chunks from %s", len(chunks), source)
	})
	return ix.initErr
}

// Ready reports whether initialization has completed successfully.
func (ix *Index) Ready() bool {
	return ix.ready.Load()
}

// Len returns the number of indexed chunks (0 before initialization).
func (ix *Index) Len() int {
	if !ix.ready.Load() {
		return 0
	}
	return len(ix.chunks)
}

// Retrieve scores every chunk against the query and returns the topK
// best, in non-increasing score order. Chunks with no signal (score <= 0)
// are discarded; ties keep original document order. Odd queries (empty,
// all-stopword, nonsense) degrade to an empty result, never an error.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error) {
	if err := ix.Initialize(ctx); err != nil {
		return nil, err
	}

	if topK <= 0 {
		topK = ix.topK
	}

	result := &domain.RetrievalResult{Query: query}

	q := PrepareQuery(query)
	if q.Lower == "" {
		return result, nil
	}

	type scored struct {
		idx   int
		score float64
	}

	var candidates []scored
	for i := range ix.chunks {
		var score float64
		for _, rule := range ix.rules {
			score += rule.Score(q, ix.lowered[i])
		}
		if score > 0 {
			candidates = append(candidates, scored{idx: i, score: score})
		}
	}

	// Stable keeps document order for equal scores - the deterministic
	// tie-break callers can rely on.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	for _, c := range candidates {
		result.Chunks = append(result.Chunks, ix.chunks[c.idx])
		result.Scores = append(result.Scores, c.score)
	}

	return result, nil
}

// ContextFor retrieves topK chunks and assembles them into a prompt
// context string. An empty retrieval yields the fixed fallback message,
// never an empty string.
func (ix *Index) ContextFor(ctx context.Context, query string, topK int) (string, error) {
	result, err := ix.Retrieve(ctx, query, topK)
	if err != nil {
		return "", err
	}
	return AssembleContext(result), nil
}
