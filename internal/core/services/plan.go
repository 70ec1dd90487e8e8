package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driving"
	"github.com/evidentia-labs/evidentia/internal/logger"
	"github.com/evidentia-labs/evidentia/internal/planparse"
)

// Ensure PlanService implements the interface.
var _ driving.PlanService = (*PlanService)(nil)

// DefaultPlanTimeout bounds the model call when no timeout is
// configured. The call must never hang indefinitely.
const DefaultPlanTimeout = 120 * time.Second

// promptSegmentBudget caps how many segments go into one prompt.
const promptSegmentBudget = 40

// PlanService generates and validates plan artifacts by sending a
// document's segments to the language model collaborator.
type PlanService struct {
	manifests  driven.ManifestStore
	extraction driven.ExtractionStore
	artifacts  driven.ArtifactStore
	llm        driven.LLMService
	timeout    time.Duration
}

// NewPlanService creates a plan service. timeout <= 0 falls back to
// DefaultPlanTimeout.
func NewPlanService(
	manifests driven.ManifestStore,
	extraction driven.ExtractionStore,
	artifacts driven.ArtifactStore,
	llm driven.LLMService,
	timeout time.Duration,
) *PlanService {
	if timeout <= 0 {
		timeout = DefaultPlanTimeout
	}
	return &PlanService{
		manifests:  manifests,
		extraction: extraction,
		artifacts:  artifacts,
		llm:        llm,
		timeout:    timeout,
	}
}

// RequestPlan runs one plan generation for a document. A degraded
// artifact is a successful return carrying diagnostic detail; only
// transport and state errors surface as errors.
func (s *PlanService) RequestPlan(ctx context.Context, id domain.DocID, opts domain.PlanOptions) (*domain.PlanArtifact, error) {
	manifest, err := s.manifests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if manifest.State != domain.TaskStateDone {
		return nil, fmt.Errorf("%w: document %s is %s, plan requires done", domain.ErrInvalidState, id, manifest.State)
	}

	segments, err := s.extraction.ReadSegments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}

	prompt := s.buildPrompt(manifest, segments, opts)

	logger.Section("Plan Generation")
	logger.Debug("Document %s: prompting %s with %d segments", id, s.llm.ModelName(), len(segments))

	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.Generate(llmCtx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	artifact := s.validate(id, raw)
	if opts.KeepPromptClear {
		artifact.Prompt = prompt
	}

	if err := s.artifacts.WritePlan(ctx, artifact); err != nil {
		return nil, fmt.Errorf("persist plan: %w", err)
	}

	// The audit trail is required, not optional logging.
	if err := s.manifests.AppendHistory(ctx, id, "plan_generated", map[string]string{
		"quality":        string(artifact.Quality),
		"schema_version": artifact.SchemaVersion,
	}); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	logger.Info("Plan %s: quality=%s (%d parse errors)", id, artifact.Quality, len(artifact.ParseErrors))
	return artifact, nil
}

// validate runs the tolerant parsing chain and schema validation over
// the raw model output and classifies the result.
func (s *PlanService) validate(id domain.DocID, raw string) *domain.PlanArtifact {
	artifact := &domain.PlanArtifact{
		DocID:         id.String(),
		SchemaVersion: domain.PlanSchemaVersion,
		GeneratedAt:   time.Now().UTC(),
	}

	obj, parseErrors, ok := planparse.Parse(raw)
	artifact.ParseErrors = parseErrors
	if !ok {
		artifact.Quality = domain.QualityDegraded
		artifact.Reason = domain.ReasonNonConformingOutput
		return artifact
	}

	parsed, issues := planparse.Validate(obj, domain.PlanSchemaVersion)
	if parsed == nil {
		artifact.Quality = domain.QualityDegraded
		artifact.Reason = domain.ReasonInvalidPlanSchema
		artifact.Issues = issues
		return artifact
	}

	artifact.Issues = issues
	artifact.Parsed = parsed
	if len(parsed.ProposedNotions) > 0 {
		artifact.Quality = domain.QualityFull
	} else {
		artifact.Quality = domain.QualityPartial
	}
	return artifact
}

// buildPrompt assembles the model prompt from the manifest metadata and
// the extracted segments.
func (s *PlanService) buildPrompt(manifest *domain.Manifest, segments []domain.Segment, opts domain.PlanOptions) string {
	var b strings.Builder

	b.WriteString("You are given the extracted text of a document. ")
	b.WriteString("Identify the distinct knowledge units it contains and return ONLY a JSON object with this shape:\n")
	b.WriteString(`{"schema_version": "` + domain.PlanSchemaVersion + `", "document_summary": "...", "language": "...", `)
	b.WriteString(`"proposed_notions": [{"candidate_notion_id": "...", "title": "...", "summary": "...", `)
	b.WriteString(`"study_design": "...", "evidence_level": "a1|a2|b|c|d", "tags": ["..."], "priority": 0.5}]}`)
	b.WriteString("\n\n")

	meta := manifest.EffectiveMetadata()
	if title := meta["title"]; title != "" {
		fmt.Fprintf(&b, "Document title: %s\n", title)
	}
	if year := meta["year"]; year != "" {
		fmt.Fprintf(&b, "Publication year: %s\n", year)
	}
	if manifest.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", manifest.Language)
	}
	b.WriteString("\nDocument text:\n")

	count := len(segments)
	if count > promptSegmentBudget {
		count = promptSegmentBudget
	}
	for _, seg := range segments[:count] {
		text := seg.Text
		if opts.Pseudonymize {
			text = pseudonymize(text)
		}
		fmt.Fprintf(&b, "\n[pages %d-%d]\n%s\n", seg.PageStart, seg.PageEnd, text)
	}

	return b.String()
}

// Patterns scrubbed from prompts when pseudonymization is requested.
// Dates and long digit runs are the identifier shapes that most often
// leak through medical source text.
var (
	datePattern       = regexp.MustCompile(`\b\d{1,2}[-./]\d{1,2}[-./]\d{2,4}\b`)
	identifierPattern = regexp.MustCompile(`\b\d{6,}\b`)
)

// pseudonymize scrubs date-like and identifier-like tokens before the
// text leaves the system.
func pseudonymize(text string) string {
	text = datePattern.ReplaceAllString(text, "[date]")
	return identifierPattern.ReplaceAllString(text, "[id]")
}
