package driving

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// IngestService accepts documents and exposes their task state and
// metadata to external actors.
type IngestService interface {
	// Ingest stores raw document bytes, ensures the manifest and
	// enqueues extraction. Re-ingesting identical bytes yields the same
	// id and, when extraction already completed, short-circuits without
	// re-running it.
	Ingest(ctx context.Context, data []byte, sourceFilename string) (*IngestReceipt, error)

	// Status returns the current task state for a document.
	Status(ctx context.Context, id domain.DocID) (domain.TaskState, error)

	// GetPrefill returns the effective merged metadata, with override
	// precedence over inferred prefill.
	GetPrefill(ctx context.Context, id domain.DocID) (map[string]string, error)

	// ApplyOverrides records caller-supplied metadata and returns the
	// new effective merged metadata.
	ApplyOverrides(ctx context.Context, id domain.DocID, fields map[string]string) (map[string]string, error)
}

// IngestReceipt reports the outcome of an ingest call.
type IngestReceipt struct {
	// DocID is the content-derived identifier of the document.
	DocID domain.DocID

	// State is the task state after ingestion (queued, or done when the
	// ingest short-circuited).
	State domain.TaskState

	// AlreadyExtracted is true when the ingest short-circuited because
	// segments already existed for this content.
	AlreadyExtracted bool
}
