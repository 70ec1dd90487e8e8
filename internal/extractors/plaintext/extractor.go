// Package plaintext extracts text from plain-text file formats.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor handles plain-text documents. The whole file becomes a
// single page; plain text carries no page structure of its own.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".markdown", ".log", ".csv"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract reads the file and returns it as one page.
func (e *Extractor) Extract(_ context.Context, sourcePath string) ([]domain.Page, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrExtractionFailed, sourcePath, err)
	}

	return []domain.Page{{
		Number: 1,
		Text:   string(data),
	}}, nil
}
