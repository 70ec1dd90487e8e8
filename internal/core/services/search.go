package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driving"
	"github.com/evidentia-labs/evidentia/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchLimit applies when the caller leaves the limit unset.
const DefaultSearchLimit = 20

// candidateFactor oversizes the per-signal candidate pools so that
// pre-score filtering still leaves enough material to fill the limit.
const candidateFactor = 3

// collection bundles the two sub-indexes of one logical collection.
type collection struct {
	name    string
	lexical driven.LexicalIndex
	vectors driven.VectorIndex
}

// candidate is one union member before scoring.
type candidate struct {
	record  *domain.IndexRecord
	lexical float64
	vector  float64
}

// SearchService ranks indexed segments and notions with a hybrid of
// lexical match, vector similarity and document-intrinsic priority.
type SearchService struct {
	segments collection
	notions  collection
	embedder driven.EmbeddingService
	weights  domain.SearchSettings
}

// NewSearchService creates a search service over the two collections.
// The vector indexes and embedder are optional; without them the vector
// signal is zero for every candidate.
func NewSearchService(
	lexSegments driven.LexicalIndex,
	vecSegments driven.VectorIndex,
	lexNotions driven.LexicalIndex,
	vecNotions driven.VectorIndex,
	embedder driven.EmbeddingService,
	weights domain.SearchSettings,
) *SearchService {
	if weights.WeightLexical == 0 && weights.WeightVector == 0 && weights.WeightPriority == 0 {
		weights = domain.SearchSettings{
			WeightLexical:  domain.DefaultWeightLexical,
			WeightVector:   domain.DefaultWeightVector,
			WeightPriority: domain.DefaultWeightPriority,
		}
	}
	return &SearchService{
		segments: collection{name: domain.CollectionSegments, lexical: lexSegments, vectors: vecSegments},
		notions:  collection{name: domain.CollectionNotions, lexical: lexNotions, vectors: vecNotions},
		embedder: embedder,
		weights:  weights,
	}
}

// Search computes candidates from both signals, unions them by id,
// filters before scoring and returns the top results by combined score.
func (s *SearchService) Search(ctx context.Context, queries []string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	cleaned := make([]string, 0, len(queries))
	for _, q := range queries {
		if q = strings.TrimSpace(q); q != "" {
			cleaned = append(cleaned, q)
		}
	}
	if len(cleaned) == 0 {
		return []domain.SearchResult{}, nil
	}

	limit := clampLimit(opts.Limit)
	candidateLimit := limit * candidateFactor

	logger.Section("Search Execution")
	logger.Debug("Queries: %v, mode=%q, limit=%d", cleaned, opts.Mode, limit)

	union := make(map[string]*candidate)
	var unionMu sync.Mutex

	for _, coll := range s.pool(opts.Mode) {
		if err := s.collect(ctx, coll, cleaned, candidateLimit, union, &unionMu); err != nil {
			return nil, fmt.Errorf("search %s: %w", coll.name, err)
		}
	}

	logger.Debug("Candidate union: %d ids", len(union))

	// Filtering happens over the candidate union before any scoring, so
	// filtered-out items never occupy a result slot.
	results := make([]domain.SearchResult, 0, len(union))
	for _, c := range union {
		if c.record == nil {
			continue
		}
		if !matchesMode(c.record, opts.Mode) || !matchesFilters(c.record, opts.Filters) {
			continue
		}

		score := s.weights.WeightLexical*c.lexical +
			s.weights.WeightVector*c.vector +
			s.weights.WeightPriority*c.record.Priority

		results = append(results, domain.SearchResult{
			Record:   *c.record,
			Score:    score,
			Lexical:  c.lexical,
			Vector:   c.vector,
			Priority: c.record.Priority,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	logger.Info("Search results: %d", len(results))
	return results, nil
}

// pool selects the collections a mode searches. Autosuggest modes only
// ever surface notions.
func (s *SearchService) pool(mode domain.SearchMode) []collection {
	switch mode {
	case domain.SearchModeAutosuggestPlan, domain.SearchModeAutosuggestReport:
		return []collection{s.notions}
	default:
		return []collection{s.segments, s.notions}
	}
}

// collect runs the lexical and vector signal for one collection in
// parallel and merges both into the shared union. Across multiple
// queries the best signal per id wins.
func (s *SearchService) collect(
	ctx context.Context,
	coll collection,
	queries []string,
	candidateLimit int,
	union map[string]*candidate,
	unionMu *sync.Mutex,
) error {
	var lexHits []driven.LexicalHit
	var vecHits []driven.VectorHit
	var lexErr, vecErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		lexHits, lexErr = s.lexicalCandidates(ctx, coll, queries, candidateLimit)
	}()

	go func() {
		defer wg.Done()
		vecHits, vecErr = s.vectorCandidates(ctx, coll, queries, candidateLimit)
	}()

	wg.Wait()

	if lexErr != nil {
		return lexErr
	}
	if vecErr != nil {
		// Vector search degrades gracefully; the lexical side already
		// produced candidates.
		logger.Warn("Vector search failed for %s: %v", coll.name, vecErr)
		vecHits = nil
	}

	unionMu.Lock()
	defer unionMu.Unlock()

	for _, hit := range lexHits {
		rec := hit.Record
		score := 1.0 / float64(1+hit.Rank)
		c, ok := union[rec.ID]
		if !ok {
			c = &candidate{}
			union[rec.ID] = c
		}
		if c.record == nil {
			c.record = &rec
		}
		if score > c.lexical {
			c.lexical = score
		}
	}

	for _, hit := range vecHits {
		c, ok := union[hit.ID]
		if !ok {
			c = &candidate{}
			union[hit.ID] = c
		}
		if hit.Similarity > c.vector {
			c.vector = hit.Similarity
		}
		if c.record == nil {
			// Vector-only candidate: hydrate filter attributes from the
			// lexical store. A stale id that no longer exists is skipped.
			rec, err := coll.lexical.Get(ctx, hit.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					delete(union, hit.ID)
					continue
				}
				return fmt.Errorf("hydrate %s: %w", hit.ID, err)
			}
			c.record = rec
		}
	}

	return nil
}

// lexicalCandidates gathers the top candidates by BM25 rank for each
// query. The best (lowest) rank per id across queries is kept by the
// merge in collect.
func (s *SearchService) lexicalCandidates(ctx context.Context, coll collection, queries []string, limit int) ([]driven.LexicalHit, error) {
	var hits []driven.LexicalHit
	for _, q := range queries {
		h, err := coll.lexical.Search(ctx, q, limit)
		if err != nil {
			return nil, fmt.Errorf("lexical search %q: %w", q, err)
		}
		hits = append(hits, h...)
	}
	return hits, nil
}

// vectorCandidates gathers the top candidates by cosine similarity on
// each query embedding.
func (s *SearchService) vectorCandidates(ctx context.Context, coll collection, queries []string, limit int) ([]driven.VectorHit, error) {
	if coll.vectors == nil || s.embedder == nil {
		return nil, nil
	}

	var hits []driven.VectorHit
	for _, q := range queries {
		embedding, err := s.embedder.Embed(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("embed query %q: %w", q, err)
		}
		h, err := coll.vectors.Search(ctx, embedding, limit)
		if err != nil {
			return nil, fmt.Errorf("vector search %q: %w", q, err)
		}
		hits = append(hits, h...)
	}
	return hits, nil
}

// clampLimit bounds the result count. An unset limit gets the default;
// anything else lands in [1, MaxSearchLimit].
func clampLimit(limit int) int {
	if limit == 0 {
		return DefaultSearchLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > domain.MaxSearchLimit {
		return domain.MaxSearchLimit
	}
	return limit
}

// matchesMode applies the autosuggest gate.
func matchesMode(rec *domain.IndexRecord, mode domain.SearchMode) bool {
	switch mode {
	case domain.SearchModeAutosuggestPlan:
		return rec.AutosuggestPlan
	case domain.SearchModeAutosuggestReport:
		return rec.AutosuggestReport
	default:
		return true
	}
}

// matchesFilters applies tag, evidence-level and year filters.
func matchesFilters(rec *domain.IndexRecord, f domain.SearchFilters) bool {
	if f.EvidenceLevel != "" && rec.EvidenceLevel != f.EvidenceLevel {
		return false
	}
	if f.YearFrom != 0 && rec.Year < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && (rec.Year == 0 || rec.Year > f.YearTo) {
		return false
	}
	for _, want := range f.Tags {
		found := false
		for _, have := range rec.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
