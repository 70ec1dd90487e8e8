package domain

import "time"

// Quality is the trust level assigned to a model-derived artifact after
// parsing and schema validation.
type Quality string

const (
	// QualityFull means the payload validated and contains at least one
	// substantive proposed notion.
	QualityFull Quality = "full"

	// QualityPartial means the payload validated but extracted nothing
	// substantive.
	QualityPartial Quality = "partial"

	// QualityDegraded means parsing or validation failed. A degraded
	// artifact is still a successful response shape, carrying diagnostic
	// detail.
	QualityDegraded Quality = "degraded"
)

// PlanSchemaVersion is the plan schema this core validates against.
const PlanSchemaVersion = "1.0.0"

// PlanOptions configures a plan generation request.
type PlanOptions struct {
	// Pseudonymize scrubs date-like and identifier-like tokens from the
	// prompt before it leaves the system.
	Pseudonymize bool

	// KeepPromptClear retains the clear-text prompt in the artifact for
	// auditing. Off by default.
	KeepPromptClear bool
}

// ProposedNotion is one candidate knowledge unit extracted by the model
// and normalised by schema validation.
type ProposedNotion struct {
	// CandidateNotionID is required; validation fails without it.
	CandidateNotionID string `json:"candidate_notion_id"`

	// Title is the required short name of the candidate.
	Title string `json:"title"`

	// Summary is the distilled statement.
	Summary string `json:"summary,omitempty"`

	// StudyDesign is the canonical study design label after synonym
	// normalisation (e.g. "meta-analyse" becomes "meta_analysis").
	StudyDesign string `json:"study_design,omitempty"`

	// EvidenceLevel is the canonical evidence grade (a1, a2, b, c, d).
	EvidenceLevel string `json:"evidence_level,omitempty"`

	// Tags is the coerced tag list: comma-split when the model returned
	// a string, empty when it returned null.
	Tags []string `json:"tags,omitempty"`

	// Priority is clamped to [0,1].
	Priority float64 `json:"priority"`
}

// ParsedPlan is the validated, normalised plan payload.
type ParsedPlan struct {
	// SchemaVersion echoes the schema the payload validated against.
	SchemaVersion string `json:"schema_version"`

	// DocumentSummary is the model's overall summary of the document.
	DocumentSummary string `json:"document_summary,omitempty"`

	// Language is the document language reported by the model.
	Language string `json:"language,omitempty"`

	// ProposedNotions are the extracted candidate knowledge units.
	ProposedNotions []ProposedNotion `json:"proposed_notions"`
}

// PlanArtifact is the validated (or rejected) output of one plan
// generation run for a document. Immutable once written; a new run
// supersedes the old artifact and appends a history entry.
type PlanArtifact struct {
	// DocID is the document the plan was generated for.
	DocID string `json:"doc_id"`

	// Quality is the trust level of the artifact.
	Quality Quality `json:"quality"`

	// SchemaVersion is the schema the payload was validated against.
	SchemaVersion string `json:"schema_version"`

	// ParseErrors records every failed parsing stage, preserved even
	// when a later stage succeeded.
	ParseErrors []string `json:"parse_errors,omitempty"`

	// Reason explains a degraded artifact ("non_conforming_output" or
	// "invalid_plan_schema").
	Reason string `json:"reason,omitempty"`

	// Issues lists field-level validation problems as "path: message".
	Issues []string `json:"issues,omitempty"`

	// Parsed is the validated payload. Nil when Quality is degraded.
	Parsed *ParsedPlan `json:"parsed,omitempty"`

	// Prompt is retained only when PlanOptions.KeepPromptClear was set.
	Prompt string `json:"prompt,omitempty"`

	// GeneratedAt is when the artifact was produced.
	GeneratedAt time.Time `json:"generated_at"`
}
