package retrieval

import (
	"strings"
	"unicode"
)

// Default rule weights. These are untuned heuristics - treat them as
// configurable defaults, not calibrated constants.
const (
	DefaultPhraseWeight     = 10.0
	DefaultTermWeight       = 2.0
	DefaultVocabularyWeight = 1.0
)

// minTermLength filters stopword-like noise: query tokens of one or two
// characters carry no retrieval signal.
const minTermLength = 3

// Query is a preprocessed query string shared by all scoring rules so
// tokenization happens once per retrieval, not once per rule per chunk.
type Query struct {
	Raw   string
	Lower string
	Terms []string
}

// PrepareQuery lowercases and tokenizes a query, discarding short tokens.
func PrepareQuery(raw string) Query {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var terms []string
	for _, tok := range tokenize(lower) {
		if len(tok) >= minTermLength {
			terms = append(terms, tok)
		}
	}

	return Query{Raw: raw, Lower: lower, Terms: terms}
}

// Rule is one independent relevance signal. A chunk's score is the sum of
// all rule contributions; rules never see each other's output.
type Rule interface {
	// Name identifies the rule in logs and tests
	Name() string

	// Score returns this rule's contribution for one chunk.
	// content is the chunk text already lowercased by the index.
	Score(q Query, content string) float64
}

// DefaultRules returns the standard rule set: exact phrase bonus,
// per-term frequency, and a domain vocabulary nudge.
func DefaultRules(vocabulary []string) []Rule {
	return []Rule{
		&PhraseRule{Weight: DefaultPhraseWeight},
		&TermRule{Weight: DefaultTermWeight},
		NewVocabularyRule(DefaultVocabularyWeight, vocabulary),
	}
}

// PhraseRule awards a large fixed bonus when the chunk contains the whole
// query as a contiguous substring. A verbatim phrase match is a much
// stronger signal than the same words scattered across the chunk.
type PhraseRule struct {
	Weight float64
}

func (r *PhraseRule) Name() string { return "phrase" }

func (r *PhraseRule) Score(q Query, content string) float64 {
	if q.Lower == "" {
		return 0
	}
	if strings.Contains(content, q.Lower) {
		return r.Weight
	}
	return 0
}

// TermRule counts whole-word occurrences of each query term. Matching is
// on word boundaries, not substrings, so "art" does not match "particle".
type TermRule struct {
	Weight float64
}

func (r *TermRule) Name() string { return "term" }

func (r *TermRule) Score(q Query, content string) float64 {
	if len(q.Terms) == 0 {
		return 0
	}

	counts := wordCounts(content)

	var score float64
	for _, term := range q.Terms {
		score += float64(counts[term]) * r.Weight
	}
	return score
}

// VocabularyRule adds a small flat bonus per occurrence of query terms
// that belong to a fixed domain vocabulary, nudging ranking toward
// on-topic chunks. Terms outside the vocabulary contribute nothing here.
type VocabularyRule struct {
	Weight float64
	terms  []string
}

// NewVocabularyRule creates a vocabulary rule. Terms are lowercased;
// multi-word terms are matched as substrings, single words on word
// boundaries.
func NewVocabularyRule(weight float64, terms []string) *VocabularyRule {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	return &VocabularyRule{Weight: weight, terms: lowered}
}

func (r *VocabularyRule) Name() string { return "vocabulary" }

func (r *VocabularyRule) Score(q Query, content string) float64 {
	if len(r.terms) == 0 || q.Lower == "" {
		return 0
	}

	var counts map[string]int
	var score float64
	for _, term := range r.terms {
		if strings.Contains(term, " ") {
			if strings.Contains(q.Lower, term) {
				score += float64(strings.Count(content, term)) * r.Weight
			}
			continue
		}
		if !containsTerm(q.Terms, term) {
			continue
		}
		if counts == nil {
			counts = wordCounts(content)
		}
		score += float64(counts[term]) * r.Weight
	}
	return score
}

func containsTerm(terms []string, term string) bool {
	for _, t := range terms {
		if t == term {
			return true
		}
	}
	return false
}

// tokenize splits text into lowercase word tokens on any non-letter,
// non-digit rune.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// wordCounts returns per-word occurrence counts for already-lowercased text.
func wordCounts(content string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range tokenize(content) {
		counts[tok]++
	}
	return counts
}
