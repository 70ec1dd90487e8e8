// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// convertFunc converts a document on disk to plain text.
type convertFunc func(path string) (string, error)

// Extractor handles PDF documents through docconv. Page boundaries are
// the form feed characters the converter emits between pages.
type Extractor struct {
	convert convertFunc
}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{
		convert: func(path string) (string, error) {
			res, err := docconv.ConvertPath(path)
			if err != nil {
				return "", err
			}
			return res.Body, nil
		},
	}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract converts the PDF and splits the text into pages. A page with
// no extractable text is kept as an empty page so page numbering stays
// aligned with the source document.
func (e *Extractor) Extract(_ context.Context, sourcePath string) ([]domain.Page, error) {
	body, err := e.convert(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: converting %s: %v", domain.ErrExtractionFailed, sourcePath, err)
	}

	parts := strings.Split(body, "\f")
	pages := make([]domain.Page, len(parts))
	for i, part := range parts {
		pages[i] = domain.Page{
			Number: i + 1,
			Text:   strings.TrimSpace(part),
		}
	}
	return pages, nil
}
