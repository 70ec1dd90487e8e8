package driven

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// VectorIndex provides semantic similarity search over one logical
// collection. Implementations are selected at startup by configuration,
// not probed at call sites.
type VectorIndex interface {
	// Upsert replaces the embedding for an existing id or appends a new
	// one. A dimensionality mismatch rejects that item only; the rest of
	// the batch still lands. Rejections are reported per item.
	Upsert(ctx context.Context, entries []domain.VectorEntry) ([]UpsertIssue, error)

	// Search finds the k nearest neighbours to the query vector by
	// cosine similarity. A zero-norm query returns no hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close persists and releases resources.
	Close() error
}

// UpsertIssue reports one rejected entry from an upsert batch.
type UpsertIssue struct {
	// ID is the rejected entry's id.
	ID string

	// Err is the rejection cause (e.g. domain.ErrDimensionMismatch).
	Err error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched segment or notion id.
	ID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
