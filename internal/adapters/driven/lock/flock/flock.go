// Package flock implements cross-process document locking with advisory
// file locks.
package flock

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/evidentia-labs/evidentia/internal/adapters/driven/storage/fsstore"
	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure Locker implements the interface.
var _ driven.DocLocker = (*Locker)(nil)

// lockFile is the lock file name inside a document directory.
const lockFile = ".lock"

// retryInterval is how often an acquisition attempt is retried while
// another process holds the lock.
const retryInterval = 50 * time.Millisecond

// Locker takes per-document advisory locks at the document's sharded
// store path. Every process derives the same path from the same id, so
// the lock is shared by all processes working on one store.
type Locker struct {
	store   *fsstore.Store
	timeout time.Duration
}

// New creates a locker over the given store. timeout bounds how long
// Acquire blocks before giving up.
func New(store *fsstore.Store, timeout time.Duration) *Locker {
	return &Locker{store: store, timeout: timeout}
}

// Acquire takes the advisory lock for a document. The returned release
// function unlocks it; failing to call it leaves the lock held until
// the process exits.
func (l *Locker) Acquire(ctx context.Context, id domain.DocID) (func() error, error) {
	dir := l.store.Resolve(id)
	if err := fsstore.EnsureDir(dir); err != nil {
		return nil, err
	}

	fl := flock.New(filepath.Join(dir, lockFile))

	lockCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	locked, err := fl.TryLockContext(lockCtx, retryInterval)
	if err != nil {
		if lockCtx.Err() != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s after %s", domain.ErrLockTimeout, id, l.timeout)
		}
		return nil, fmt.Errorf("acquiring lock for %s: %w", id, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s after %s", domain.ErrLockTimeout, id, l.timeout)
	}

	return fl.Unlock, nil
}

// NopLocker is a DocLocker that never blocks. It is wired in when
// cross-process locking is disabled; intra-process exclusion still
// holds through the store's own mutexes.
type NopLocker struct{}

// Ensure NopLocker implements the interface.
var _ driven.DocLocker = (*NopLocker)(nil)

// Acquire returns immediately with a no-op release.
func (NopLocker) Acquire(_ context.Context, _ domain.DocID) (func() error, error) {
	return func() error { return nil }, nil
}
