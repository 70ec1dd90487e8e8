package domain

import "time"

// RecordKind discriminates the two record kinds sharing the notions file.
type RecordKind string

const (
	// KindNotion marks a canonical knowledge unit record.
	KindNotion RecordKind = "notion"

	// KindContribution marks a document-to-notion contribution record.
	KindContribution RecordKind = "contribution"
)

// Notion is a canonical distilled knowledge unit derived from one or
// more documents. Each committed revision carries a monotonically
// increasing version and is appended, never mutated in place, so that
// history is reconstructable.
type Notion struct {
	// ID is the stable notion identifier shared by all its versions.
	ID string `json:"notion_id"`

	// Version is assigned at commit time: highest existing version + 1.
	Version int `json:"version"`

	// Title is the short canonical name.
	Title string `json:"title"`

	// Summary is the distilled statement of the notion.
	Summary string `json:"summary"`

	// Priority is an editorial importance weight in [0,1], independent
	// of any query. It feeds the hybrid search score.
	Priority float64 `json:"priority"`

	// AutosuggestPlan marks the notion as eligible for plan
	// autosuggestion.
	AutosuggestPlan bool `json:"autosuggest_plan"`

	// AutosuggestReport marks the notion as eligible for report
	// autosuggestion.
	AutosuggestReport bool `json:"autosuggest_report"`

	// EvidenceLevel is the canonical evidence grade (a1, a2, b, c, d).
	EvidenceLevel string `json:"evidence_level,omitempty"`

	// Tags are free-form classification labels.
	Tags []string `json:"tags,omitempty"`

	// Year is the publication year of the underlying evidence, when known.
	Year int `json:"year,omitempty"`

	// Payload carries free-form structured content.
	Payload map[string]any `json:"payload,omitempty"`

	// CommittedAt is when this version was committed.
	CommittedAt time.Time `json:"committed_at"`
}

// Contribution links a document to a notion it supports.
type Contribution struct {
	// ID is the unique contribution identifier.
	ID string `json:"contribution_id"`

	// NotionID is the notion this contribution supports.
	NotionID string `json:"notion_id"`

	// DocID is the contributing document.
	DocID string `json:"doc_id"`

	// Excerpt is the supporting passage, when available.
	Excerpt string `json:"excerpt,omitempty"`

	// CommittedAt is when the contribution was recorded.
	CommittedAt time.Time `json:"committed_at"`
}

// NotionRecord is the sum type stored in the notions file. Exactly one
// of Notion or Contribution is set, matching the Kind tag.
type NotionRecord struct {
	Kind         RecordKind    `json:"kind"`
	Notion       *Notion       `json:"notion,omitempty"`
	Contribution *Contribution `json:"contribution,omitempty"`
}
