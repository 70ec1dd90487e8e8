package driven

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// LexicalIndex provides full-text search operations over one logical
// collection. Backed by SQLite FTS5 for BM25 keyword ranking.
type LexicalIndex interface {
	// Index adds or updates a record in the search index.
	Index(ctx context.Context, rec domain.IndexRecord) error

	// Get retrieves a stored record by id, or domain.ErrNotFound.
	// Used to hydrate vector-only candidates with filter attributes.
	Get(ctx context.Context, id string) (*domain.IndexRecord, error)

	// Delete removes a record from the search index.
	Delete(ctx context.Context, id string) error

	// Search performs a keyword search and returns matches in BM25
	// order, best first. Rank is the ordinal position in that order.
	Search(ctx context.Context, query string, limit int) ([]LexicalHit, error)

	// Close releases resources.
	Close() error
}

// LexicalHit represents a search result from the lexical engine.
type LexicalHit struct {
	// Record is the matched index record.
	Record domain.IndexRecord

	// Rank is the 0-based position in BM25 order; lower is better.
	// The search service maps it to a bounded score via 1/(1+rank).
	Rank int
}
