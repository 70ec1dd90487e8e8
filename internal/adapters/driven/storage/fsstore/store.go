// Package fsstore implements the content-addressed filesystem store.
//
// Every document lives in a directory derived deterministically from
// its id: the first two and next two hex characters of the digest form
// nested shard levels, followed by a directory named after the full
// digest. A legacy flat layout (root/<digest>) is still read as a
// fallback for stores created before sharding.
//
// All file writes go through a temp-file-and-rename so a reader never
// observes a partially written file. A crash mid-write leaves only an
// orphaned temp file, never a corrupt target.
package fsstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// File names within a document directory.
const (
	manifestFile = "manifest.json"
	pagesFile    = "pages.jsonl"
	segmentsFile = "segments.jsonl"
	planFile     = "plan.json"
	tmpDir       = "tmp"
)

// notionsFile is the append-only record stream at the store root.
const notionsFile = "notions.jsonl"

// Store is the filesystem-backed document store rooted at a single
// directory shared by all collaborating processes.
type Store struct {
	root string

	// locks serialises manifest read-modify-write per document within
	// this process. Cross-process serialisation is the DocLocker's job.
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// notionsMu serialises appends to the shared notions file.
	notionsMu sync.Mutex
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".evidentia", "store")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}

	return &Store{
		root:  dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// Locate maps a document id to its directory. It is a pure function of
// the id: the same input always yields the same path, across processes
// and restarts. With sharded=false it returns the legacy flat location.
func (s *Store) Locate(id domain.DocID, sharded bool) string {
	if !sharded {
		return filepath.Join(s.root, id.Digest)
	}
	return filepath.Join(s.root, id.Digest[:2], id.Digest[2:4], id.Digest)
}

// Resolve returns the directory holding a document's state, preferring
// the sharded layout and falling back to the legacy flat layout when
// the sharded path is absent. A document with no on-disk state resolves
// to its sharded location.
func (s *Store) Resolve(id domain.DocID) string {
	shardedPath := s.Locate(id, true)
	if _, err := os.Stat(shardedPath); err == nil {
		return shardedPath
	}
	legacyPath := s.Locate(id, false)
	if _, err := os.Stat(legacyPath); err == nil {
		return legacyPath
	}
	return shardedPath
}

// EnsureDir creates a directory and all parents idempotently. Failure
// to create (permissions, disk full) is reported loudly, never skipped.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// AtomicWrite writes data to path via a sibling temp file in a tmp/
// subdirectory, then a single rename into place.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	scratch := filepath.Join(dir, tmpDir)
	if err := EnsureDir(scratch); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(scratch, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}

// docLock returns the per-document mutex, creating it on first use.
func (s *Store) docLock(id domain.DocID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id.String()]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id.String()] = l
	}
	return l
}

// ManifestStore returns a ManifestStore backed by this store.
func (s *Store) ManifestStore() driven.ManifestStore {
	return &manifestStore{store: s}
}

// ExtractionStore returns an ExtractionStore backed by this store.
func (s *Store) ExtractionStore() driven.ExtractionStore {
	return &extractionStore{store: s}
}

// ArtifactStore returns an ArtifactStore backed by this store.
func (s *Store) ArtifactStore() driven.ArtifactStore {
	return &artifactStore{store: s}
}

// NotionStore returns a NotionStore backed by this store.
func (s *Store) NotionStore() driven.NotionStore {
	return &notionStore{store: s}
}
