package driven

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// ManifestStore persists per-document manifests. All mutations are
// read-modify-write operations serialised per document; concurrent
// updates from different workers must not lose writes.
type ManifestStore interface {
	// Ensure creates the manifest for a document or merges new upload
	// metadata into an existing one, preferring existing values for
	// already-set fields.
	Ensure(ctx context.Context, id domain.DocID, sourceFilename string, byteSize int64) (*domain.Manifest, error)

	// Get retrieves the manifest, or domain.ErrNotFound.
	Get(ctx context.Context, id domain.DocID) (*domain.Manifest, error)

	// Update applies a mutation under the per-document lock and rewrites
	// the manifest atomically. UpdatedAt is refreshed by the store.
	Update(ctx context.Context, id domain.DocID, apply func(*domain.Manifest)) (*domain.Manifest, error)

	// AppendHistory appends one event with a server-assigned timestamp.
	AppendHistory(ctx context.Context, id domain.DocID, eventType string, detail map[string]string) error
}

// ExtractionStore persists document source bytes and extraction output.
// All writes are atomic: a reader never observes a partially written
// file.
type ExtractionStore interface {
	// WriteSource stores the original document bytes and returns the
	// absolute path of the stored file.
	WriteSource(ctx context.Context, id domain.DocID, filename string, data []byte) (string, error)

	// SourcePath returns the stored source file path, or domain.ErrNotFound.
	SourcePath(ctx context.Context, id domain.DocID) (string, error)

	// WritePages replaces the page file for a document.
	WritePages(ctx context.Context, id domain.DocID, pages []domain.Page) error

	// WriteSegments atomically replaces the full segment set. No partial
	// overwrite is ever visible to readers.
	WriteSegments(ctx context.Context, id domain.DocID, segments []domain.Segment) error

	// ReadSegments returns the persisted segments, or domain.ErrNotFound
	// when extraction has not produced any.
	ReadSegments(ctx context.Context, id domain.DocID) ([]domain.Segment, error)

	// HasSegments reports whether a segment file exists for the document.
	HasSegments(ctx context.Context, id domain.DocID) (bool, error)
}

// ArtifactStore persists plan artifacts. An artifact is immutable once
// written; a new plan run supersedes the previous artifact.
type ArtifactStore interface {
	// WritePlan stores the artifact for its document.
	WritePlan(ctx context.Context, artifact *domain.PlanArtifact) error

	// ReadPlan returns the current artifact, or domain.ErrNotFound.
	ReadPlan(ctx context.Context, id domain.DocID) (*domain.PlanArtifact, error)
}

// NotionStore persists notions and contributions in one append-only
// record stream.
type NotionStore interface {
	// AppendNotion appends one notion version.
	AppendNotion(ctx context.Context, n domain.Notion) error

	// AppendContribution appends one contribution record.
	AppendContribution(ctx context.Context, c domain.Contribution) error

	// ListNotions returns the latest version of every notion.
	ListNotions(ctx context.Context) ([]domain.Notion, error)

	// MaxVersion returns the highest committed version for a notion id,
	// or 0 when the notion is new.
	MaxVersion(ctx context.Context, notionID string) (int, error)
}
