package domain

// DocumentChunk is a bounded contiguous span of the knowledge document,
// the unit of retrieval. Chunks are created in bulk by the chunker and
// never mutated afterwards - reinitialization replaces the whole set.
type DocumentChunk struct {
	ID       string        `json:"id"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata describes a chunk's position within its source document
type ChunkMetadata struct {
	// Source is the origin document name
	Source string `json:"source"`

	// ChunkIndex is the chunk's position among its siblings (0-based, contiguous)
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the sibling count; identical for every chunk of a document
	TotalChunks int `json:"total_chunks"`

	// WordCount is the number of whitespace-separated tokens in Content
	WordCount int `json:"word_count"`
}

// RetrievalResult holds the ranked chunks for one query.
// Chunks and Scores are parallel sequences: Scores[i] belongs to Chunks[i],
// and scores are non-increasing. An empty result is a defined outcome
// (no chunk scored above zero), not an error.
type RetrievalResult struct {
	Chunks []DocumentChunk `json:"chunks"`
	Scores []float64       `json:"scores"`
	Query  string          `json:"query"`
}

// IsEmpty reports whether no chunk matched the query
func (r *RetrievalResult) IsEmpty() bool {
	return len(r.Chunks) == 0
}

// Top returns the best-scoring chunk, or nil for an empty result
func (r *RetrievalResult) Top() *DocumentChunk {
	if len(r.Chunks) == 0 {
		return nil
	}
	return &r.Chunks[0]
}

// DefaultTopK is the number of chunks retrieved when the caller does not
// specify one.
const DefaultTopK = 4
