package retrieval

import (
	"testing"
)

func TestPrepareQuery(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLower string
		wantTerms []string
	}{
		{"simple", "Admission Requirements", "admission requirements", []string{"admission", "requirements"}},
		{"short tokens dropped", "is it an MBA", "is it an mba", []string{"mba"}},
		{"punctuation split", "fees, tuition & costs!", "fees, tuition & costs!", []string{"fees", "tuition", "costs"}},
		{"empty", "", "", nil},
		{"whitespace", "   ", "", nil},
		{"stopwords only", "a an of to", "a an of to", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PrepareQuery(tt.raw)
			if q.Lower != tt.wantLower {
				t.Errorf("expected lower %q, got %q", tt.wantLower, q.Lower)
			}
			if len(q.Terms) != len(tt.wantTerms) {
				t.Fatalf("expected terms %v, got %v", tt.wantTerms, q.Terms)
			}
			for i := range q.Terms {
				if q.Terms[i] != tt.wantTerms[i] {
					t.Errorf("expected term %q at %d, got %q", tt.wantTerms[i], i, q.Terms[i])
				}
			}
		})
	}
}

func TestPhraseRule(t *testing.T) {
	rule := &PhraseRule{Weight: 10}

	tests := []struct {
		name    string
		query   string
		content string
		want    float64
	}{
		{"exact phrase", "admission requirements", "the admission requirements are listed below", 10},
		{"scattered words", "admission requirements", "admission is open. see the requirements page", 0},
		{"no match", "admission requirements", "tuition is due in september", 0},
		{"empty query", "", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PrepareQuery(tt.query)
			if got := rule.Score(q, tt.content); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTermRule(t *testing.T) {
	rule := &TermRule{Weight: 2}

	tests := []struct {
		name    string
		query   string
		content string
		want    float64
	}{
		{"single occurrence", "tuition", "tuition is due in september", 2},
		{"repeated term", "tuition", "tuition plans and tuition waivers", 4},
		{"two terms", "tuition fees", "tuition covers fees", 4},
		{"whole word only", "art", "participants in particle physics", 0},
		{"no terms", "of an", "anything at all", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PrepareQuery(tt.query)
			if got := rule.Score(q, tt.content); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVocabularyRule(t *testing.T) {
	rule := NewVocabularyRule(1, []string{"tuition", "scholarship", "open day"})

	tests := []struct {
		name    string
		query   string
		content string
		want    float64
	}{
		{"query term in vocabulary", "tuition costs", "tuition is due. tuition plans exist", 2},
		{"query term not in vocabulary", "library hours", "tuition is due in september", 0},
		{"multi-word vocab term", "when is the open day", "the open day is in may. open day tours run hourly", 2},
		{"nonsense query", "xyzzy", "tuition and scholarship information", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PrepareQuery(tt.query)
			if got := rule.Score(q, tt.content); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVocabularyRule_NormalizesTerms(t *testing.T) {
	rule := NewVocabularyRule(1, []string{"  Tuition ", "", "FEES"})

	q := PrepareQuery("tuition fees")
	if got := rule.Score(q, "tuition covers fees"); got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules(DefaultVocabulary)
	if len(rules) != 3 {
		t.Fatalf("expected 3 default rules, got %d", len(rules))
	}

	names := map[string]bool{}
	for _, r := range rules {
		names[r.Name()] = true
	}
	for _, want := range []string{"phrase", "term", "vocabulary"} {
		if !names[want] {
			t.Errorf("missing rule %q", want)
		}
	}
}
