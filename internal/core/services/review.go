package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driving"
	"github.com/evidentia-labs/evidentia/internal/logger"
)

// Ensure ReviewService implements the interface.
var _ driving.ReviewService = (*ReviewService)(nil)

// ReviewService commits reviewed notions into the canonical append-only
// store and both indexes.
type ReviewService struct {
	manifests driven.ManifestStore
	notions   driven.NotionStore
	lexical   driven.LexicalIndex
	vectors   driven.VectorIndex
	embedder  driven.EmbeddingService
}

// NewReviewService creates a review service. vectors and embedder are
// optional.
func NewReviewService(
	manifests driven.ManifestStore,
	notions driven.NotionStore,
	lexical driven.LexicalIndex,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingService,
) *ReviewService {
	return &ReviewService{
		manifests: manifests,
		notions:   notions,
		lexical:   lexical,
		vectors:   vectors,
		embedder:  embedder,
	}
}

// CommitReview appends one new version of each notion, records the
// reviewed document's contributions and indexes everything. Versions
// are assigned here: highest committed version + 1, so history always
// grows and is reconstructable.
func (s *ReviewService) CommitReview(ctx context.Context, id domain.DocID, notions []domain.Notion) ([]domain.Notion, error) {
	if _, err := s.manifests.Get(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	committed := make([]domain.Notion, 0, len(notions))

	for _, n := range notions {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}

		maxVersion, err := s.notions.MaxVersion(ctx, n.ID)
		if err != nil {
			return nil, fmt.Errorf("version notion %s: %w", n.ID, err)
		}
		n.Version = maxVersion + 1
		n.CommittedAt = now

		if err := s.notions.AppendNotion(ctx, n); err != nil {
			return nil, fmt.Errorf("append notion %s: %w", n.ID, err)
		}

		contribution := domain.Contribution{
			ID:          uuid.New().String(),
			NotionID:    n.ID,
			DocID:       id.String(),
			CommittedAt: now,
		}
		if err := s.notions.AppendContribution(ctx, contribution); err != nil {
			return nil, fmt.Errorf("append contribution for %s: %w", n.ID, err)
		}

		if err := s.index(ctx, n); err != nil {
			return nil, err
		}

		committed = append(committed, n)
	}

	if err := s.manifests.AppendHistory(ctx, id, "review_committed", map[string]string{
		"notions": strconv.Itoa(len(committed)),
	}); err != nil {
		logger.Warn("Review %s: history append failed: %v", id, err)
	}

	logger.Info("Review %s: committed %d notions", id, len(committed))
	return committed, nil
}

// index writes the notion's latest version into the lexical index and,
// when an embedder is wired, the vector index.
func (s *ReviewService) index(ctx context.Context, n domain.Notion) error {
	rec := domain.IndexRecord{
		ID:                n.ID,
		Kind:              "notion",
		Title:             n.Title,
		Text:              n.Summary,
		Tags:              n.Tags,
		EvidenceLevel:     n.EvidenceLevel,
		Year:              n.Year,
		Priority:          n.Priority,
		AutosuggestPlan:   n.AutosuggestPlan,
		AutosuggestReport: n.AutosuggestReport,
	}
	if err := s.lexical.Index(ctx, rec); err != nil {
		return fmt.Errorf("index notion %s: %w", n.ID, err)
	}

	if s.vectors == nil || s.embedder == nil {
		return nil
	}

	embedding, err := s.embedder.Embed(ctx, n.Title+"\n"+n.Summary)
	if err != nil {
		logger.Warn("Review: embedding notion %s failed: %v", n.ID, err)
		return nil
	}
	issues, err := s.vectors.Upsert(ctx, []domain.VectorEntry{{ID: n.ID, Embedding: embedding}})
	if err != nil {
		logger.Warn("Review: vector upsert for %s failed: %v", n.ID, err)
		return nil
	}
	for _, issue := range issues {
		logger.Warn("Review: vector entry %s rejected: %v", issue.ID, issue.Err)
	}
	return nil
}
