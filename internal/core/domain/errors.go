package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. Callers branch on them
// with errors.Is rather than matching message strings.
var (
	// ErrInvalidDocumentID indicates a syntactically malformed document id.
	// It is always raised before any I/O happens.
	ErrInvalidDocumentID = errors.New("invalid document id")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates an operation was requested in a task state
	// that forbids it (e.g. requesting a plan before extraction is done).
	ErrInvalidState = errors.New("invalid state")

	// ErrExtractionFailed indicates text or OCR extraction raised an
	// unexpected error. The job is marked failed and never retried
	// automatically.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrUpstreamUnavailable indicates the language model collaborator is
	// unreachable, timed out, or returned a server error. Distinct from
	// application-level invalid output so callers can retry.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrSchemaValidation indicates parsed JSON does not satisfy the
	// versioned plan schema. Always accompanied by field-level issues.
	ErrSchemaValidation = errors.New("schema validation failed")

	// ErrNonConformingOutput indicates no parsing stage produced valid
	// JSON from the model output at all.
	ErrNonConformingOutput = errors.New("non-conforming output")

	// ErrLockTimeout indicates the cross-process advisory lock could not
	// be acquired within its deadline. The caller should retry later,
	// not assume corruption.
	ErrLockTimeout = errors.New("lock timeout")

	// ErrDimensionMismatch indicates a vector insert whose dimensionality
	// does not match the store. The item is rejected, never truncated.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Failure reasons recorded in manifests when a task ends in the failed
// state. This is a closed taxonomy; a raw error string is never the sole
// signal.
const (
	ReasonExtractionFailed    = "extraction_failed"
	ReasonNonConformingOutput = "non_conforming_output"
	ReasonInvalidPlanSchema   = "invalid_plan_schema"
	ReasonUpstreamUnavailable = "upstream_unavailable"
	ReasonLockTimeout         = "lock_timeout"
)
