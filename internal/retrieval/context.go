package retrieval

import (
	"strings"

	"github.com/campushq/campuschat-core/internal/core/domain"
)

// ContextHeader labels the excerpts handed to the language model.
const ContextHeader = "Relevant excerpts from the school guide:"

// FallbackMessage is returned when no chunk matched the query. It is a
// defined outcome, not an error, and must never be an empty string - the
// model (and ultimately the visitor) needs something to work with.
const FallbackMessage = "No relevant information was found in the school guide for this question. " +
	"Please suggest that the visitor contacts the school office directly for help."

// AssembleContext turns a retrieval result into a single prompt-context
// string: chunk contents in rank order, separated by blank lines, under a
// short header. Overlapping adjacent chunks are not deduplicated, so
// boundary text can appear twice.
func AssembleContext(result *domain.RetrievalResult) string {
	if result == nil || result.IsEmpty() {
		return FallbackMessage
	}

	var b strings.Builder
	b.WriteString(ContextHeader)
	for _, chunk := range result.Chunks {
		b.WriteString("\n\n")
		b.WriteString(chunk.Content)
	}
	return b.String()
}
