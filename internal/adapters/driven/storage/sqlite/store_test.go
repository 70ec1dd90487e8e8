package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

func testIndex(t *testing.T) (*Store, context.Context) {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, context.Background()
}

func TestIndexAndSearch(t *testing.T) {
	store, ctx := testIndex(t)
	idx := store.LexicalIndex(domain.CollectionSegments)

	require.NoError(t, idx.Index(ctx, domain.IndexRecord{
		ID: "seg-1", DocID: "sha256:aa", Kind: "segment",
		Text: "beta blockers reduce mortality after myocardial infarction",
	}))
	require.NoError(t, idx.Index(ctx, domain.IndexRecord{
		ID: "seg-2", DocID: "sha256:bb", Kind: "segment",
		Text: "statins for primary prevention of cardiovascular disease",
	}))

	hits, err := idx.Search(ctx, "myocardial infarction", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "seg-1", hits[0].Record.ID)
	assert.Equal(t, 0, hits[0].Rank, "best hit carries rank 0")
}

func TestSearchRankIsOrdinal(t *testing.T) {
	store, ctx := testIndex(t)
	idx := store.LexicalIndex(domain.CollectionSegments)

	// seg-1 mentions the term twice, so BM25 must rank it first.
	require.NoError(t, idx.Index(ctx, domain.IndexRecord{
		ID: "seg-1", Kind: "segment", Text: "hypertension treatment for hypertension",
	}))
	require.NoError(t, idx.Index(ctx, domain.IndexRecord{
		ID: "seg-2", Kind: "segment", Text: "hypertension and diet and lifestyle and exercise",
	}))

	hits, err := idx.Search(ctx, "hypertension", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "seg-1", hits[0].Record.ID)
	assert.Equal(t, 0, hits[0].Rank)
	assert.Equal(t, 1, hits[1].Rank)
}

func TestIndexUpsertReplaces(t *testing.T) {
	store, ctx := testIndex(t)
	idx := store.LexicalIndex(domain.CollectionNotions)

	rec := domain.IndexRecord{ID: "n-1", Kind: "notion", Title: "Old", Text: "aspirin"}
	require.NoError(t, idx.Index(ctx, rec))

	rec.Title = "New"
	rec.Text = "clopidogrel"
	rec.Priority = 0.8
	require.NoError(t, idx.Index(ctx, rec))

	hits, err := idx.Search(ctx, "aspirin", 10)
	require.NoError(t, err)
	assert.Empty(t, hits, "replaced text must leave the FTS index")

	hits, err = idx.Search(ctx, "clopidogrel", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "New", hits[0].Record.Title)
	assert.Equal(t, 0.8, hits[0].Record.Priority)
}

func TestCollectionsAreIsolated(t *testing.T) {
	store, ctx := testIndex(t)
	segments := store.LexicalIndex(domain.CollectionSegments)
	notions := store.LexicalIndex(domain.CollectionNotions)

	require.NoError(t, segments.Index(ctx, domain.IndexRecord{
		ID: "seg-1", Kind: "segment", Text: "warfarin dosing",
	}))

	hits, err := notions.Search(ctx, "warfarin", 10)
	require.NoError(t, err)
	assert.Empty(t, hits, "a hit must not leak across collections")
}

func TestGetAndDelete(t *testing.T) {
	store, ctx := testIndex(t)
	idx := store.LexicalIndex(domain.CollectionNotions)

	rec := domain.IndexRecord{
		ID: "n-1", Kind: "notion", Title: "Anticoagulation", Text: "DOAC first line",
		Tags: []string{"cardiology"}, EvidenceLevel: "a1", Year: 2021,
		Priority: 0.9, AutosuggestPlan: true,
	}
	require.NoError(t, idx.Index(ctx, rec))

	got, err := idx.Get(ctx, "n-1")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	require.NoError(t, idx.Delete(ctx, "n-1"))

	_, err = idx.Get(ctx, "n-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	hits, err := idx.Search(ctx, "DOAC", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchQuotedInput(t *testing.T) {
	store, ctx := testIndex(t)
	idx := store.LexicalIndex(domain.CollectionSegments)

	require.NoError(t, idx.Index(ctx, domain.IndexRecord{
		ID: "seg-1", Kind: "segment", Text: "plain sentence",
	}))

	// FTS operators in user input must not break the query.
	_, err := idx.Search(ctx, `sentence AND "unbalanced OR (`, 10)
	assert.NoError(t, err)
}

func TestFtsMatchExpr(t *testing.T) {
	assert.Equal(t, `"one" "two"`, ftsMatchExpr("one two"))
	assert.Equal(t, `"say""hi"`, ftsMatchExpr(`say"hi`))
	assert.Equal(t, "", ftsMatchExpr("   "))
}
