package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driving"
	"github.com/evidentia-labs/evidentia/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService accepts raw document bytes, persists them under their
// content-derived id and hands extraction to the scheduler.
type IngestService struct {
	manifests  driven.ManifestStore
	extraction driven.ExtractionStore
	scheduler  *Scheduler
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	manifests driven.ManifestStore,
	extraction driven.ExtractionStore,
	scheduler *Scheduler,
) *IngestService {
	return &IngestService{
		manifests:  manifests,
		extraction: extraction,
		scheduler:  scheduler,
	}
}

// Ingest stores the document and enqueues extraction. The id is a pure
// function of the bytes, so re-ingesting identical content converges on
// the same document: when its segments already exist and the manifest
// says done, the call short-circuits without re-running extraction.
func (s *IngestService) Ingest(ctx context.Context, data []byte, sourceFilename string) (*driving.IngestReceipt, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ingest: empty document")
	}

	id := domain.ComputeDocID(data)
	logger.Section("Ingest")
	logger.Debug("Document %s (%d bytes, %q)", id, len(data), sourceFilename)

	if _, err := s.extraction.WriteSource(ctx, id, sourceFilename, data); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	manifest, err := s.manifests.Ensure(ctx, id, sourceFilename, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ensure manifest: %w", err)
	}

	if err := s.prefill(ctx, id, sourceFilename, data); err != nil {
		logger.Warn("Ingest %s: prefill inference failed: %v", id, err)
	}

	if err := s.manifests.AppendHistory(ctx, id, "ingested", map[string]string{
		"source_filename": sourceFilename,
	}); err != nil {
		logger.Warn("Ingest %s: history append failed: %v", id, err)
	}

	// Idempotent re-submission: extraction is expensive and re-running
	// it changes nothing since the input is content-addressed.
	if manifest.State == domain.TaskStateDone {
		hasSegments, err := s.extraction.HasSegments(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check segments: %w", err)
		}
		if hasSegments {
			logger.Info("Ingest %s: already extracted, short-circuiting", id)
			return &driving.IngestReceipt{
				DocID:            id,
				State:            domain.TaskStateDone,
				AlreadyExtracted: true,
			}, nil
		}
	}

	state, err := s.scheduler.Enqueue(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("enqueue extraction: %w", err)
	}

	return &driving.IngestReceipt{DocID: id, State: state}, nil
}

// Status returns the persisted task state for a document.
func (s *IngestService) Status(ctx context.Context, id domain.DocID) (domain.TaskState, error) {
	manifest, err := s.manifests.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return manifest.State, nil
}

// GetPrefill returns the effective merged metadata, with override
// precedence over inferred prefill.
func (s *IngestService) GetPrefill(ctx context.Context, id domain.DocID) (map[string]string, error) {
	manifest, err := s.manifests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return manifest.EffectiveMetadata(), nil
}

// ApplyOverrides records caller-supplied metadata fields. Overrides
// always win over inferred values in the effective view.
func (s *IngestService) ApplyOverrides(ctx context.Context, id domain.DocID, fields map[string]string) (map[string]string, error) {
	now := time.Now().UTC()

	manifest, err := s.manifests.Update(ctx, id, func(m *domain.Manifest) {
		if m.UserOverrides == nil {
			m.UserOverrides = make(map[string]domain.OverrideValue, len(fields))
		}
		for field, value := range fields {
			m.UserOverrides[field] = domain.OverrideValue{Value: value, UpdatedAt: now}
		}
	})
	if err != nil {
		return nil, err
	}

	return manifest.EffectiveMetadata(), nil
}

// prefill infers metadata from the filename and content and records it
// without clobbering values from earlier ingests.
func (s *IngestService) prefill(ctx context.Context, id domain.DocID, sourceFilename string, data []byte) error {
	title := inferTitle(sourceFilename)
	year := inferYear(sourceFilename)

	language := ""
	if utf8.Valid(data) {
		language = detectLanguage(string(data))
	}

	_, err := s.manifests.Update(ctx, id, func(m *domain.Manifest) {
		if title != "" {
			m.SetPrefill("title", title, provenanceFilename)
		}
		if year != "" {
			m.SetPrefill("year", year, provenanceFilename)
		}
		if language != "" {
			m.SetPrefill("language", language, provenanceContent)
			if m.Language == "" {
				m.Language = language
			}
		}
	})
	return err
}
