package cli

import (
	"context"
	"fmt"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driving"
)

// Fixture ids derived from content, so they satisfy the id shape the
// commands validate against.
var (
	knownDocID   = domain.ComputeDocID([]byte("known fixture document"))
	missingDocID = domain.ComputeDocID([]byte("absent fixture document"))
)

// setupTestServices swaps the package-level services for stubs and
// returns a cleanup restoring the previous wiring.
func setupTestServices() func() {
	prevIngest := ingestService
	prevSearch := searchService
	prevPlan := planService
	prevReview := reviewService

	ingestService = &fakeIngest{}
	searchService = &fakeSearch{}
	planService = &fakePlan{}
	reviewService = &fakeReview{}

	return func() {
		ingestService = prevIngest
		searchService = prevSearch
		planService = prevPlan
		reviewService = prevReview
	}
}

type fakeIngest struct {
	overrides map[string]string
}

func (f *fakeIngest) Ingest(_ context.Context, data []byte, _ string) (*driving.IngestReceipt, error) {
	return &driving.IngestReceipt{
		DocID: domain.ComputeDocID(data),
		State: domain.TaskStateQueued,
	}, nil
}

func (f *fakeIngest) Status(_ context.Context, id domain.DocID) (domain.TaskState, error) {
	if id == missingDocID {
		return "", domain.ErrNotFound
	}
	return domain.TaskStateDone, nil
}

func (f *fakeIngest) GetPrefill(context.Context, domain.DocID) (map[string]string, error) {
	return map[string]string{"title": "hip fracture trial", "year": "2019"}, nil
}

func (f *fakeIngest) ApplyOverrides(_ context.Context, _ domain.DocID, fields map[string]string) (map[string]string, error) {
	f.overrides = fields
	merged := map[string]string{"title": "hip fracture trial", "year": "2019"}
	for field, value := range fields {
		merged[field] = value
	}
	return merged, nil
}

type fakeSearch struct{}

func (f *fakeSearch) Search(_ context.Context, queries []string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if len(queries) == 0 {
		return []domain.SearchResult{}, nil
	}
	return []domain.SearchResult{
		{
			Record:  domain.IndexRecord{ID: "seg-1", DocID: knownDocID.String(), Kind: "segment", Title: "Fracture outcomes"},
			Score:   0.61,
			Lexical: 1.0,
		},
	}, nil
}

type fakePlan struct{}

func (f *fakePlan) RequestPlan(_ context.Context, id domain.DocID, _ domain.PlanOptions) (*domain.PlanArtifact, error) {
	if id == missingDocID {
		return nil, fmt.Errorf("manifest: %w", domain.ErrNotFound)
	}
	return &domain.PlanArtifact{
		DocID:         id.String(),
		Quality:       domain.QualityFull,
		SchemaVersion: domain.PlanSchemaVersion,
		Parsed: &domain.ParsedPlan{
			SchemaVersion: domain.PlanSchemaVersion,
			ProposedNotions: []domain.ProposedNotion{
				{CandidateNotionID: "n-1", Title: "Early mobilisation", EvidenceLevel: "a2"},
			},
		},
	}, nil
}

type fakeReview struct{}

func (f *fakeReview) CommitReview(_ context.Context, _ domain.DocID, notions []domain.Notion) ([]domain.Notion, error) {
	committed := make([]domain.Notion, len(notions))
	for i, n := range notions {
		if n.ID == "" {
			n.ID = fmt.Sprintf("notion-%d", i+1)
		}
		n.Version = 1
		committed[i] = n
	}
	return committed, nil
}
