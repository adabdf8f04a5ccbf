package retrieval

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/normalisers"
)

// Loader extracts the raw text of the knowledge document. Load is called
// exactly once per index initialization.
type Loader interface {
	// Load returns the document text and its source name
	Load(ctx context.Context) (text string, source string, err error)
}

// NewLoader picks a loader implementation from the file extension.
func NewLoader(path string) Loader {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewPDFLoader(path)
	}
	return NewFileLoader(path)
}

// FileLoader reads a plain text, markdown or HTML document from disk and
// normalises it before chunking.
type FileLoader struct {
	path     string
	registry *normalisers.Registry
}

// NewFileLoader creates a loader for a text-based document.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{
		path:     path,
		registry: normalisers.DefaultRegistry(),
	}
}

// Load reads and normalises the document. A missing or unreadable file is
// a load error; an empty file is left for the chunker to reject so the
// two failure modes stay distinguishable.
func (l *FileLoader) Load(_ context.Context) (string, string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, l.path, err)
	}

	text := l.registry.Normalise(string(data), filepath.Ext(l.path))
	return text, filepath.Base(l.path), nil
}

// PDFLoader extracts plain text from a PDF document.
type PDFLoader struct {
	path string
}

// NewPDFLoader creates a loader for a PDF document.
func NewPDFLoader(path string) *PDFLoader {
	return &PDFLoader{path: path}
}

// Load opens the PDF and extracts its plain text. A PDF that opens but
// yields no text (scanned images, encrypted) is a load error - there is
// nothing to index.
func (l *PDFLoader) Load(_ context.Context) (string, string, error) {
	f, reader, err := pdf.Open(l.path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, l.path, err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, l.path, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, l.path, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", "", fmt.Errorf("%w: %s: no extractable text", domain.ErrDocumentLoad, l.path)
	}

	return text, filepath.Base(l.path), nil
}

// StaticLoader serves a fixed in-memory document. Used by tests and by
// deployments that embed their guide in the binary.
type StaticLoader struct {
	Text   string
	Source string
}

// Load returns the static document.
func (l *StaticLoader) Load(_ context.Context) (string, string, error) {
	return l.Text, l.Source, nil
}
