package driven

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// DocLocker provides per-document mutual exclusion across processes
// sharing one storage root. The lock file lives at a deterministic
// sharded path derived from the document id, so every process agrees on
// its location.
//
// When locking is disabled a no-op implementation is wired in and only
// intra-process exclusion holds.
type DocLocker interface {
	// Acquire takes the advisory lock for a document, blocking up to the
	// configured deadline. It returns a release function on success or
	// domain.ErrLockTimeout when the deadline passes.
	Acquire(ctx context.Context, id domain.DocID) (release func() error, err error)
}
