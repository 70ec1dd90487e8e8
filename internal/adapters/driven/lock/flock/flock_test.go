package flock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/evidentia/internal/adapters/driven/storage/fsstore"
	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

func testDocID(t *testing.T) domain.DocID {
	t.Helper()
	id, err := domain.ParseDocID("sha256:aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899")
	require.NoError(t, err)
	return id
}

func TestLocker_AcquireRelease(t *testing.T) {
	store, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	locker := New(store, time.Second)
	id := testDocID(t)

	release, err := locker.Acquire(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, release())

	// Re-acquirable after release.
	release, err = locker.Acquire(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, release())
}

func TestLocker_TimeoutWhileHeld(t *testing.T) {
	store, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	id := testDocID(t)

	holder := New(store, time.Second)
	release, err := holder.Acquire(context.Background(), id)
	require.NoError(t, err)
	defer release()

	// A second locker over the same store cannot get the lock and must
	// report a timeout, not hang.
	waiter := New(store, 150*time.Millisecond)
	_, err = waiter.Acquire(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
}

func TestNopLocker(t *testing.T) {
	var locker NopLocker

	release, err := locker.Acquire(context.Background(), testDocID(t))
	require.NoError(t, err)
	assert.NoError(t, release())
}
