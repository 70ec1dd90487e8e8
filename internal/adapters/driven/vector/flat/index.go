// Package flat provides a flat in-memory vector index with cosine
// similarity search and single-file persistence.
//
// The index is the configuration-selected fallback strategy when no
// external approximate-nearest-neighbour engine is available. Exact
// search over a flat store is entirely adequate at this corpus scale.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat vector store: a slice of ids and a matrix of
// embeddings, searched exhaustively by cosine similarity.
type Index struct {
	mu   sync.RWMutex
	path string
	dim  int
	ids  []string
	byID map[string]int
	vecs [][]float32
}

// New creates or opens a flat index persisted at path. A dim of 0
// defers dimensionality to the first inserted vector.
func New(path string, dim int) (*Index, error) {
	idx := &Index{
		path: path,
		dim:  dim,
		byID: make(map[string]int),
	}
	if err := idx.load(); err != nil {
		return nil, fmt.Errorf("loading vector index: %w", err)
	}
	return idx, nil
}

// Upsert replaces the embedding for an existing id or appends a new
// one. A dimensionality mismatch rejects that item only; the rest of
// the batch still lands.
func (idx *Index) Upsert(ctx context.Context, entries []domain.VectorEntry) ([]driven.UpsertIssue, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var issues []driven.UpsertIssue
	for _, entry := range entries {
		if len(entry.Embedding) == 0 {
			issues = append(issues, driven.UpsertIssue{
				ID:  entry.ID,
				Err: fmt.Errorf("%w: empty embedding", domain.ErrDimensionMismatch),
			})
			continue
		}
		if idx.dim == 0 {
			idx.dim = len(entry.Embedding)
		}
		if len(entry.Embedding) != idx.dim {
			issues = append(issues, driven.UpsertIssue{
				ID: entry.ID,
				Err: fmt.Errorf("%w: got %d, store holds %d",
					domain.ErrDimensionMismatch, len(entry.Embedding), idx.dim),
			})
			continue
		}

		vec := make([]float32, idx.dim)
		copy(vec, entry.Embedding)

		if pos, ok := idx.byID[entry.ID]; ok {
			idx.vecs[pos] = vec
			continue
		}
		idx.byID[entry.ID] = len(idx.ids)
		idx.ids = append(idx.ids, entry.ID)
		idx.vecs = append(idx.vecs, vec)
	}

	if err := idx.save(); err != nil {
		return issues, fmt.Errorf("persisting vector index: %w", err)
	}
	return issues, nil
}

// Search finds the k nearest neighbours to the query vector by cosine
// similarity. A zero-norm query returns no hits.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.vecs) == 0 {
		return nil, nil
	}
	if idx.dim != 0 && len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d, store holds %d",
			domain.ErrDimensionMismatch, len(query), idx.dim)
	}

	queryNorm := norm(query)
	if queryNorm == 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, 0, len(idx.vecs))
	for i, vec := range idx.vecs {
		if i >= len(idx.ids) {
			break // Stale matrix rows from an interrupted save.
		}
		vecNorm := norm(vec)
		if vecNorm == 0 {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ID:         idx.ids[i],
			Similarity: dot(query, vec) / (queryNorm * vecNorm),
		})
	}

	sort.Slice(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close persists the index.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.save()
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
