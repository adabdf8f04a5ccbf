package normalisers

import (
	"strings"
	"testing"
)

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		ext  string
		want string
	}{
		{".txt", ".txt"},
		{".md", ".md"},
		{".markdown", ".md"},
		{".html", ".html"},
		{".htm", ".html"},
		{".pdf", "*"}, // falls through to the wildcard plaintext normaliser
		{"", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			n := r.Get(tt.ext)
			if n == nil {
				t.Fatal("expected a normaliser")
			}
			exts := n.SupportedExtensions()
			found := false
			for _, e := range exts {
				if e == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("expected normaliser supporting %q, got %v", tt.want, exts)
			}
		})
	}
}

func TestRegistry_PriorityWins(t *testing.T) {
	r := DefaultRegistry()

	// Markdown (priority 50) beats the wildcard plaintext fallback
	n := r.Get(".md")
	if _, ok := n.(*Markdown); !ok {
		t.Errorf("expected Markdown normaliser for .md, got %T", n)
	}
}

func TestRegistry_CaseInsensitiveExtension(t *testing.T) {
	r := DefaultRegistry()
	if _, ok := r.Get(".MD").(*Markdown); !ok {
		t.Error("expected extension match to ignore case")
	}
}

func TestPlaintext(t *testing.T) {
	n := &Plaintext{}

	out := n.Normalise("  line one\r\nline two\rline three  ")
	if strings.Contains(out, "\r") {
		t.Error("expected carriage returns removed")
	}
	if out != "line one\nline two\nline three" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestMarkdown(t *testing.T) {
	n := &Markdown{}

	tests := []struct {
		name    string
		in      string
		want    []string
		exclude []string
	}{
		{
			name:    "headings",
			in:      "# Admissions\n\n## Deadlines",
			want:    []string{"Admissions", "Deadlines"},
			exclude: []string{"#"},
		},
		{
			name:    "emphasis",
			in:      "Fees are **due** in *September* with `cash`",
			want:    []string{"Fees are due in September with cash"},
			exclude: []string{"*", "`"},
		},
		{
			name:    "links keep text",
			in:      "See [the fee page](https://example.com/fees) for details",
			want:    []string{"See the fee page for details"},
			exclude: []string{"https://example.com", "[", "]"},
		},
		{
			name:    "list markers",
			in:      "- uniforms\n- transport\n> note",
			want:    []string{"uniforms", "transport", "note"},
			exclude: []string{"-", ">"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := n.Normalise(tt.in)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in output %q", w, out)
				}
			}
			for _, e := range tt.exclude {
				if strings.Contains(out, e) {
					t.Errorf("expected %q stripped from output %q", e, out)
				}
			}
		})
	}
}

func TestHTML(t *testing.T) {
	n := &HTML{}

	in := `<html><head><style>body { color: red }</style>
<script>alert("x")</script></head>
<body><h1>Admissions</h1><p>Tuition &amp; fees are due &quot;soon&quot;.</p></body></html>`

	out := n.Normalise(in)

	if strings.Contains(out, "<") || strings.Contains(out, ">") {
		t.Errorf("expected tags stripped, got %q", out)
	}
	if strings.Contains(out, "color: red") || strings.Contains(out, "alert") {
		t.Errorf("expected script and style blocks removed, got %q", out)
	}
	if !strings.Contains(out, "Admissions") {
		t.Errorf("expected heading text kept, got %q", out)
	}
	if !strings.Contains(out, `Tuition & fees are due "soon".`) {
		t.Errorf("expected entities decoded, got %q", out)
	}
}

func TestRegistry_UnmatchedPassThrough(t *testing.T) {
	r := NewRegistry()
	if got := r.Normalise("raw content", ".bin"); got != "raw content" {
		t.Errorf("expected pass-through, got %q", got)
	}
}
