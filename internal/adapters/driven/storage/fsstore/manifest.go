package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure manifestStore implements the interface.
var _ driven.ManifestStore = (*manifestStore)(nil)

// manifestStore implements driven.ManifestStore on the filesystem.
type manifestStore struct {
	store *Store
}

// Ensure creates or merges the manifest for a document. Existing values
// win over new ones, so re-upload of the same content does not clobber
// accumulated prefill and overrides.
func (m *manifestStore) Ensure(ctx context.Context, id domain.DocID, sourceFilename string, byteSize int64) (*domain.Manifest, error) {
	lock := m.store.docLock(id)
	lock.Lock()
	defer lock.Unlock()

	dir := m.store.Resolve(id)
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}

	manifest, err := m.read(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		now := time.Now().UTC()
		manifest = &domain.Manifest{
			DocID:          id.String(),
			Algo:           id.Algo,
			Hash:           id.Digest,
			SourceFilename: sourceFilename,
			ByteSize:       byteSize,
			State:          domain.TaskStateQueued,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	} else {
		// Merge: only fill fields the existing manifest never set.
		if manifest.SourceFilename == "" {
			manifest.SourceFilename = sourceFilename
		}
		if manifest.ByteSize == 0 {
			manifest.ByteSize = byteSize
		}
		manifest.UpdatedAt = time.Now().UTC()
	}

	if err := m.write(dir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Get retrieves the manifest for a document.
func (m *manifestStore) Get(ctx context.Context, id domain.DocID) (*domain.Manifest, error) {
	manifest, err := m.read(m.store.Resolve(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest for %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return manifest, nil
}

// Update applies a mutation under the per-document lock and rewrites
// the manifest atomically.
func (m *manifestStore) Update(ctx context.Context, id domain.DocID, apply func(*domain.Manifest)) (*domain.Manifest, error) {
	lock := m.store.docLock(id)
	lock.Lock()
	defer lock.Unlock()

	dir := m.store.Resolve(id)
	manifest, err := m.read(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest for %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	apply(manifest)
	manifest.UpdatedAt = time.Now().UTC()

	if err := m.write(dir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// AppendHistory appends one event with a server-assigned timestamp.
func (m *manifestStore) AppendHistory(ctx context.Context, id domain.DocID, eventType string, detail map[string]string) error {
	_, err := m.Update(ctx, id, func(manifest *domain.Manifest) {
		manifest.History = append(manifest.History, domain.HistoryEvent{
			ID:     uuid.New().String(),
			Type:   eventType,
			Detail: detail,
			At:     time.Now().UTC(),
		})
	})
	return err
}

// read loads the manifest from a document directory. The raw
// os.IsNotExist error is preserved for callers that branch on it.
func (m *manifestStore) read(dir string) (*domain.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshalling manifest: %w", err)
	}
	return &manifest, nil
}

// write persists the manifest atomically.
func (m *manifestStore) write(dir string, manifest *domain.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := AtomicWrite(filepath.Join(dir, manifestFile), data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
