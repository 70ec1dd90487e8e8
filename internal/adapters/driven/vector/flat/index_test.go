package flat

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

func testFlatIndex(t *testing.T, dim int) (*Index, context.Context) {
	t.Helper()
	idx, err := New(filepath.Join(t.TempDir(), "segments.vec"), dim)
	require.NoError(t, err)
	return idx, context.Background()
}

func TestUpsertAndSearch(t *testing.T) {
	idx, ctx := testFlatIndex(t, 3)

	issues, err := idx.Upsert(ctx, []domain.VectorEntry{
		{ID: "a", Embedding: []float32{1, 0, 0}},
		{ID: "b", Embedding: []float32{0, 1, 0}},
		{ID: "c", Embedding: []float32{0.9, 0.1, 0}},
	})
	require.NoError(t, err)
	assert.Empty(t, issues)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "c", hits[1].ID)
}

func TestUpsertReplacesExistingID(t *testing.T) {
	idx, ctx := testFlatIndex(t, 3)

	_, err := idx.Upsert(ctx, []domain.VectorEntry{{ID: "a", Embedding: []float32{1, 0, 0}}})
	require.NoError(t, err)
	_, err = idx.Upsert(ctx, []domain.VectorEntry{{ID: "a", Embedding: []float32{0, 1, 0}}})
	require.NoError(t, err)

	assert.Equal(t, 1, idx.Len(), "upsert of an existing id must not grow the store")

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestUpsertDimensionMismatchRejectsItemOnly(t *testing.T) {
	idx, ctx := testFlatIndex(t, 0)

	// First insert fixes the dimensionality at 384.
	big := make([]float32, 384)
	big[0] = 1
	issues, err := idx.Upsert(ctx, []domain.VectorEntry{
		{ID: "ok", Embedding: big},
		{ID: "tiny", Embedding: []float32{1, 2, 3}},
		{ID: "ok2", Embedding: make([]float32, 384)},
	})
	require.NoError(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, "tiny", issues[0].ID)
	assert.ErrorIs(t, issues[0].Err, domain.ErrDimensionMismatch)
	assert.Equal(t, 2, idx.Len(), "the rest of the batch must still land")

	// The store stays searchable after the rejection.
	hits, err := idx.Search(ctx, big, 10)
	require.NoError(t, err)
	assert.Equal(t, "ok", hits[0].ID)
}

func TestSearchZeroNormQueryReturnsEmpty(t *testing.T) {
	idx, ctx := testFlatIndex(t, 3)

	_, err := idx.Upsert(ctx, []domain.VectorEntry{{ID: "a", Embedding: []float32{1, 0, 0}}})
	require.NoError(t, err)

	hits, err := idx.Search(ctx, []float32{0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notions.vec")
	ctx := context.Background()

	idx, err := New(path, 0)
	require.NoError(t, err)
	_, err = idx.Upsert(ctx, []domain.VectorEntry{
		{ID: "a", Embedding: []float32{1, 2, 3}},
		{ID: "b", Embedding: []float32{4, 5, 6}},
	})
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := New(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	hits, err := reopened.Search(ctx, []float32{1, 2, 3}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestInMemoryIndexSkipsPersistence(t *testing.T) {
	idx, err := New("", 3)
	require.NoError(t, err)

	_, err = idx.Upsert(context.Background(), []domain.VectorEntry{
		{ID: "a", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)
	assert.NoError(t, idx.Close())
}
