package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure artifactStore implements the interface.
var _ driven.ArtifactStore = (*artifactStore)(nil)

// artifactStore implements driven.ArtifactStore on the filesystem.
type artifactStore struct {
	store *Store
}

// WritePlan stores the artifact for its document, superseding any
// previous artifact.
func (a *artifactStore) WritePlan(ctx context.Context, artifact *domain.PlanArtifact) error {
	id, err := domain.ParseDocID(artifact.DocID)
	if err != nil {
		return err
	}

	dir := a.store.Resolve(id)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling plan artifact: %w", err)
	}
	if err := AtomicWrite(filepath.Join(dir, planFile), data); err != nil {
		return fmt.Errorf("writing plan artifact: %w", err)
	}
	return nil
}

// ReadPlan returns the current artifact for a document.
func (a *artifactStore) ReadPlan(ctx context.Context, id domain.DocID) (*domain.PlanArtifact, error) {
	data, err := os.ReadFile(filepath.Join(a.store.Resolve(id), planFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("plan for %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading plan artifact: %w", err)
	}

	var artifact domain.PlanArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("unmarshalling plan artifact: %w", err)
	}
	return &artifact, nil
}
