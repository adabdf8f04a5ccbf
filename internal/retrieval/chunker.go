package retrieval

import (
	"fmt"
	"strings"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// DefaultSeparators is the split priority order: paragraph break, line
// break, sentence end, word boundary. A raw character split is the
// implicit last resort when none of these are present.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// ChunkConfig configures the chunker behavior.
type ChunkConfig struct {
	// ChunkSize is the target maximum characters per chunk
	ChunkSize int

	// Overlap is the number of tail characters carried into the next chunk
	Overlap int

	// Separators is the split priority order; DefaultSeparators if empty
	Separators []string
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// Chunker splits document text into bounded, overlapping chunks.
// Adjacent chunks share Overlap characters so sentences straddling a
// boundary are never fully lost to either side.
type Chunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewChunker validates the configuration and creates a chunker.
// ChunkSize must be positive and strictly greater than Overlap.
func NewChunker(cfg ChunkConfig) (*Chunker, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunking, cfg.ChunkSize)
	}
	if cfg.Overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidChunking, cfg.Overlap)
	}
	if cfg.ChunkSize <= cfg.Overlap {
		return nil, fmt.Errorf("%w: chunk size %d must exceed overlap %d", domain.ErrInvalidChunking, cfg.ChunkSize, cfg.Overlap)
	}

	separators := cfg.Separators
	if len(separators) == 0 {
		separators = DefaultSeparators
	}

	return &Chunker{
		chunkSize:  cfg.ChunkSize,
		overlap:    cfg.Overlap,
		separators: separators,
	}, nil
}

// Chunk splits text into DocumentChunks annotated with their position.
// An empty (or whitespace-only) document is an error: the caller must not
// end up with a silently empty index.
func (c *Chunker) Chunk(text, source string) ([]domain.DocumentChunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, source)
	}

	fragments := c.split(text, c.separators)
	contents := c.assemble(fragments)

	chunks := make([]domain.DocumentChunk, 0, len(contents))
	for i, content := range contents {
		chunks = append(chunks, domain.DocumentChunk{
			ID:      fmt.Sprintf("%s-%d", source, i),
			Content: content,
			Metadata: domain.ChunkMetadata{
				Source:      source,
				ChunkIndex:  i,
				TotalChunks: len(contents),
				WordCount:   len(strings.Fields(content)),
			},
		})
	}

	return chunks, nil
}

// split recursively breaks text into fragments no longer than the chunk
// size, preferring the highest-priority separator present. When every
// separator is exhausted the fragment is cut at raw character boundaries.
func (c *Chunker) split(text string, separators []string) []string {
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	if len(separators) == 0 {
		return splitRunes(text, c.chunkSize)
	}

	sep := separators[0]
	rest := separators[1:]
	if !strings.Contains(text, sep) {
		return c.split(text, rest)
	}

	var fragments []string
	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if len(piece) > c.chunkSize {
			fragments = append(fragments, c.split(piece, rest)...)
		} else {
			fragments = append(fragments, piece)
		}
	}
	return fragments
}

// assemble greedily packs fragments into chunks up to the chunk size,
// seeding each new chunk with the overlap tail of the previous one.
func (c *Chunker) assemble(fragments []string) []string {
	var chunks []string
	var buf strings.Builder

	flush := func() {
		content := strings.TrimSpace(buf.String())
		if content != "" {
			chunks = append(chunks, content)
		}
		buf.Reset()
		if c.overlap > 0 && content != "" {
			buf.WriteString(tail(content, c.overlap))
		}
	}

	for _, frag := range fragments {
		if buf.Len() > 0 && buf.Len()+len(frag) > c.chunkSize {
			flush()
		}
		buf.WriteString(frag)
	}
	if strings.TrimSpace(buf.String()) != "" {
		content := strings.TrimSpace(buf.String())
		// Drop a trailing buffer that is nothing but the carried overlap
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], content) {
			chunks = append(chunks, content)
		}
	}

	return chunks
}

// splitRunes cuts text into size-bounded pieces at rune boundaries.
func splitRunes(text string, size int) []string {
	var pieces []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}

// tail returns the last n bytes of s, snapped back to a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !isRuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
