package driving

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// PlanService generates and validates plan artifacts for extracted
// documents.
type PlanService interface {
	// RequestPlan sends the document's segments to the language model
	// collaborator and returns the validated, quality-tagged artifact.
	// Fails with domain.ErrNotFound when no manifest exists and
	// domain.ErrInvalidState when extraction is not done. A degraded
	// artifact is a successful return, not an error.
	RequestPlan(ctx context.Context, id domain.DocID, opts domain.PlanOptions) (*domain.PlanArtifact, error)
}
