package normalisers

import (
	"sort"
	"strings"
	"sync"
)

// Normaliser cleans raw document content into plain text suitable for
// chunking and keyword scoring.
type Normaliser interface {
	// Normalise converts content to cleaned plain text
	Normalise(content string) string

	// SupportedExtensions lists file extensions this normaliser handles,
	// lowercased with a leading dot. "*" matches anything.
	SupportedExtensions() []string

	// Priority breaks ties when several normalisers match (highest wins)
	Priority() int
}

// Registry selects a normaliser by file extension.
// When multiple normalisers match, the highest priority one is used.
type Registry struct {
	mu          sync.RWMutex
	normalisers []Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a normaliser.
func (r *Registry) Register(n Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
}

// Get retrieves the best-matching normaliser for a file extension, or nil.
func (r *Registry) Get(ext string) Normaliser {
	ext = strings.ToLower(strings.TrimSpace(ext))

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Normaliser
	for _, n := range r.normalisers {
		for _, supported := range n.SupportedExtensions() {
			if supported == "*" || supported == ext {
				matches = append(matches, n)
				break
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})
	return matches[0]
}

// Normalise runs the best-matching normaliser for ext over content.
// Content passes through untouched when nothing matches.
func (r *Registry) Normalise(content, ext string) string {
	n := r.Get(ext)
	if n == nil {
		return content
	}
	return n.Normalise(content)
}

// DefaultRegistry creates a registry with the built-in normalisers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&Plaintext{})
	r.Register(&Markdown{})
	r.Register(&HTML{})
	return r
}

// Plaintext is the fallback normaliser: line endings and whitespace only.
type Plaintext struct{}

func (n *Plaintext) Normalise(content string) string {
	return strings.TrimSpace(normaliseLineEndings(content))
}

func (n *Plaintext) SupportedExtensions() []string { return []string{".txt", "*"} }

func (n *Plaintext) Priority() int { return 1 }

// Markdown strips markdown syntax that would pollute keyword matching:
// heading markers, emphasis, inline code fences and link targets.
type Markdown struct{}

func (n *Markdown) Normalise(content string) string {
	content = normaliseLineEndings(content)

	var out []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimLeft(line, "#>- ")
		trimmed = strings.NewReplacer("**", "", "*", "", "`", "").Replace(trimmed)
		out = append(out, trimmed)
	}
	content = strings.Join(out, "\n")

	// [text](url) -> text
	for {
		open := strings.Index(content, "](")
		if open == -1 {
			break
		}
		close := strings.Index(content[open:], ")")
		if close == -1 {
			break
		}
		content = content[:open+1] + content[open+close+1:]
	}
	content = strings.NewReplacer("[", "", "]", "").Replace(content)

	return strings.TrimSpace(collapseBlankLines(content))
}

func (n *Markdown) SupportedExtensions() []string { return []string{".md", ".markdown"} }

func (n *Markdown) Priority() int { return 50 }

// HTML extracts readable text from HTML content.
type HTML struct{}

func (n *HTML) Normalise(content string) string {
	content = removeBlock(content, "script")
	content = removeBlock(content, "style")
	content = stripTags(content)
	content = decodeEntities(content)
	content = normaliseLineEndings(content)

	for strings.Contains(content, "  ") {
		content = strings.ReplaceAll(content, "  ", " ")
	}

	return strings.TrimSpace(collapseBlankLines(content))
}

func (n *HTML) SupportedExtensions() []string { return []string{".html", ".htm"} }

func (n *HTML) Priority() int { return 50 }

// Helpers

func normaliseLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

// removeBlock strips <tag>...</tag> blocks, case-insensitively.
func removeBlock(content, tag string) string {
	for {
		lower := strings.ToLower(content)
		start := strings.Index(lower, "<"+tag)
		if start == -1 {
			return content
		}
		end := strings.Index(lower[start:], "</"+tag+">")
		if end == -1 {
			return content
		}
		content = content[:start] + content[start+end+len(tag)+3:]
	}
}

func stripTags(content string) string {
	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func decodeEntities(content string) string {
	return strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	).Replace(content)
}
