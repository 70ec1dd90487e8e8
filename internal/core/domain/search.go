package domain

// Default hybrid scoring weights. These mirror the shipped defaults and
// are configuration candidates, not load-tested optimums.
const (
	DefaultWeightLexical  = 0.6
	DefaultWeightVector   = 0.3
	DefaultWeightPriority = 0.1
)

// MaxSearchLimit caps the result count of a single search.
const MaxSearchLimit = 50

// Collection names the two logical index collections.
const (
	CollectionSegments = "segments"
	CollectionNotions  = "notions"
)

// IndexRecord is the index projection of a Segment or a Notion. It
// carries every attribute the search filters inspect, so filtering can
// happen before scoring without extra lookups.
type IndexRecord struct {
	// ID is the segment or notion id.
	ID string `json:"id"`

	// DocID is the owning document, when the record is a segment.
	DocID string `json:"doc_id,omitempty"`

	// Kind is the record kind ("segment" or "notion").
	Kind string `json:"kind"`

	// Title is indexed alongside Text for lexical matching.
	Title string `json:"title,omitempty"`

	// Text is the searchable body.
	Text string `json:"text"`

	// Tags, EvidenceLevel and Year feed the pre-score filters.
	Tags          []string `json:"tags,omitempty"`
	EvidenceLevel string   `json:"evidence_level,omitempty"`
	Year          int      `json:"year,omitempty"`

	// Priority is the document-intrinsic weight in [0,1] feeding the
	// hybrid score. Zero for segments.
	Priority float64 `json:"priority"`

	// AutosuggestPlan and AutosuggestReport gate autosuggest-mode search.
	AutosuggestPlan   bool `json:"autosuggest_plan,omitempty"`
	AutosuggestReport bool `json:"autosuggest_report,omitempty"`
}

// SearchMode selects the candidate pool for a search.
type SearchMode string

const (
	// SearchModeDefault searches segments and notions alike.
	SearchModeDefault SearchMode = ""

	// SearchModeAutosuggestPlan restricts results to notions flagged for
	// plan autosuggestion.
	SearchModeAutosuggestPlan SearchMode = "autosuggest_plan"

	// SearchModeAutosuggestReport restricts results to notions flagged
	// for report autosuggestion.
	SearchModeAutosuggestReport SearchMode = "autosuggest_report"
)

// SearchFilters narrows the candidate union before scoring, so
// filtered-out items never occupy a result slot.
type SearchFilters struct {
	// Tags requires every listed tag to be present on the record.
	Tags []string

	// EvidenceLevel requires an exact evidence grade match.
	EvidenceLevel string

	// YearFrom and YearTo bound the record year inclusively. Zero means
	// unbounded.
	YearFrom int
	YearTo   int
}

// SearchOptions configures a search request.
type SearchOptions struct {
	// Filters are applied over the candidate union before scoring.
	Filters SearchFilters

	// Mode selects the candidate pool.
	Mode SearchMode

	// Limit is clamped to [1, MaxSearchLimit].
	Limit int
}

// SearchResult is one ranked hit.
type SearchResult struct {
	// Record is the matched index record.
	Record IndexRecord

	// Score is the combined hybrid score.
	Score float64

	// Lexical, Vector and Priority are the individual signals that
	// produced Score, kept for observability.
	Lexical  float64
	Vector   float64
	Priority float64
}

// VectorEntry pairs an id with its embedding for vector index upserts.
type VectorEntry struct {
	// ID is the segment or notion id.
	ID string `json:"id"`

	// Embedding is the fixed-length vector. All entries in one store
	// share the same dimensionality.
	Embedding []float32 `json:"embedding"`
}
