package extractors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects a PageExtractor by file extension.
type Registry struct {
	byExtension map[string][]driven.PageExtractor
}

// NewRegistry creates a registry over the given extractors.
func NewRegistry(extractors ...driven.PageExtractor) *Registry {
	r := &Registry{
		byExtension: make(map[string][]driven.PageExtractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for all its supported extensions.
func (r *Registry) Register(e driven.PageExtractor) {
	for _, ext := range e.SupportedExtensions() {
		ext = strings.ToLower(ext)
		r.byExtension[ext] = append(r.byExtension[ext], e)
	}
}

// ForPath returns the highest-priority extractor claiming the file's
// extension. Extension matching is case-insensitive.
func (r *Registry) ForPath(path string) (driven.PageExtractor, error) {
	ext := strings.ToLower(filepath.Ext(path))

	candidates := r.byExtension[ext]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no extractor for extension %q", domain.ErrNotFound, ext)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Priority() > best.Priority() {
			best = c
		}
	}
	return best, nil
}
