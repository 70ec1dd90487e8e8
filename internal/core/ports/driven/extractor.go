package driven

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// PageExtractor extracts per-page text from a stored source file.
// Each extractor handles specific file extensions.
type PageExtractor interface {
	// SupportedExtensions returns the lowercase extensions this
	// extractor handles, including the leading dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred) when
	// several extractors claim the same extension.
	Priority() int

	// Extract reads the source file and returns its pages in order.
	Extract(ctx context.Context, sourcePath string) ([]domain.Page, error)
}

// ExtractorRegistry selects an extractor for a source file.
type ExtractorRegistry interface {
	// ForPath returns the highest-priority extractor claiming the file's
	// extension, or domain.ErrNotFound when no extractor matches.
	ForPath(path string) (PageExtractor, error)
}

// OCRFallback recovers text from a page with no directly extractable
// text. This is an external collaborator; failures are recovered
// locally by keeping the page with empty text.
type OCRFallback interface {
	// RecognisePage runs OCR over one page of the source file.
	RecognisePage(ctx context.Context, sourcePath string, pageNumber int) (string, error)
}
