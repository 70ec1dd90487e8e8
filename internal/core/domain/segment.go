package domain

import "strings"

// Page is one page of extracted document text.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"number"`

	// Text is the extracted page text. May be empty when both direct
	// extraction and the OCR fallback produced nothing.
	Text string `json:"text"`

	// UsedFallback is true when the text came from the OCR fallback
	// rather than direct extraction.
	UsedFallback bool `json:"used_fallback,omitempty"`
}

// Segment is a token-bounded, page-aligned chunk of a document's
// extracted text. Segments are produced once per extraction run and are
// immutable; re-extraction replaces the full set atomically.
type Segment struct {
	// ID is the unique segment identifier.
	ID string `json:"segment_id"`

	// DocID is the owning document.
	DocID string `json:"doc_id"`

	// PageStart and PageEnd are the inclusive page range covered by this
	// segment. A page is never split across two segments.
	PageStart int `json:"page_start"`
	PageEnd   int `json:"page_end"`

	// Text is the concatenated page text.
	Text string `json:"text"`

	// TokenEstimate is a cheap whitespace-split token count, not a real
	// tokeniser. Precision is traded for cost.
	TokenEstimate int `json:"token_estimate"`
}

// EstimateTokens approximates the token count of text by splitting on
// whitespace.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}
