package driving

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// ReviewService commits reviewed notions into the canonical store and
// the indexes.
type ReviewService interface {
	// CommitReview appends one version of each notion, assigns versions,
	// records contributions from the reviewed document and indexes
	// everything for retrieval. It returns the committed notions with
	// their assigned versions.
	CommitReview(ctx context.Context, id domain.DocID, notions []domain.Notion) ([]domain.Notion, error)
}
