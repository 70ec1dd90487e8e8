package fsstore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure extractionStore implements the interface.
var _ driven.ExtractionStore = (*extractionStore)(nil)

// extractionStore implements driven.ExtractionStore on the filesystem.
type extractionStore struct {
	store *Store
}

// WriteSource stores the original document bytes under the document
// directory. The stored name keeps only the original extension; the
// user-supplied filename never becomes part of a path.
func (e *extractionStore) WriteSource(ctx context.Context, id domain.DocID, filename string, data []byte) (string, error) {
	dir := e.store.Resolve(id)
	if err := EnsureDir(dir); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(dir, "source"+ext)
	if err := AtomicWrite(path, data); err != nil {
		return "", fmt.Errorf("writing source: %w", err)
	}
	return path, nil
}

// SourcePath returns the stored source file path.
func (e *extractionStore) SourcePath(ctx context.Context, id domain.DocID) (string, error) {
	dir := e.store.Resolve(id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("source for %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("reading document directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "source" || strings.HasPrefix(name, "source.") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("source for %s: %w", id, domain.ErrNotFound)
}

// WritePages replaces the page file for a document.
func (e *extractionStore) WritePages(ctx context.Context, id domain.DocID, pages []domain.Page) error {
	return writeJSONL(filepath.Join(e.store.Resolve(id), pagesFile), pages)
}

// WriteSegments atomically replaces the full segment set.
func (e *extractionStore) WriteSegments(ctx context.Context, id domain.DocID, segments []domain.Segment) error {
	return writeJSONL(filepath.Join(e.store.Resolve(id), segmentsFile), segments)
}

// ReadSegments returns the persisted segments.
func (e *extractionStore) ReadSegments(ctx context.Context, id domain.DocID) ([]domain.Segment, error) {
	path := filepath.Join(e.store.Resolve(id), segmentsFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("segments for %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("opening segments: %w", err)
	}
	defer f.Close()

	var segments []domain.Segment
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var seg domain.Segment
		if err := json.Unmarshal(line, &seg); err != nil {
			return nil, fmt.Errorf("unmarshalling segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning segments: %w", err)
	}
	return segments, nil
}

// HasSegments reports whether a segment file exists for the document.
func (e *extractionStore) HasSegments(ctx context.Context, id domain.DocID) (bool, error) {
	_, err := os.Stat(filepath.Join(e.store.Resolve(id), segmentsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking segments: %w", err)
	}
	return true, nil
}

// writeJSONL marshals records one JSON object per line and writes the
// whole file atomically, so a replacement is all-or-nothing.
func writeJSONL[T any](path string, records []T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return fmt.Errorf("marshalling record: %w", err)
		}
	}
	if err := AtomicWrite(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
