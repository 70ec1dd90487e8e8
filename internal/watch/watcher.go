// Package watch implements the inbox watcher: documents dropped into a
// watched directory are ingested automatically.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/evidentia-labs/evidentia/internal/core/ports/driving"
	"github.com/evidentia-labs/evidentia/internal/logger"
)

// settleDelay gives the writing process time to finish before the file
// is read. Editors and downloaders often emit a Create followed by a
// burst of Writes.
const settleDelay = 200 * time.Millisecond

// Watcher ingests files dropped into an inbox directory.
type Watcher struct {
	dir     string
	ingest  driving.IngestService
	pending map[string]time.Time
}

// New creates a watcher over dir.
func New(dir string, ingest driving.IngestService) *Watcher {
	return &Watcher{
		dir:     dir,
		ingest:  ingest,
		pending: make(map[string]time.Time),
	}
}

// Run watches the inbox until the context is cancelled. Files already
// present when the watcher starts are ingested first.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	if err := w.ingestExisting(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(settleDelay)
	defer ticker.Stop()

	logger.Info("Watching inbox %s", w.dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case <-ticker.C:
			w.flushSettled(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// handleEvent marks a created or written file as pending ingestion.
// Directories, hidden files and other event kinds are ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !eligible(event.Name) {
		return
	}
	w.pending[event.Name] = time.Now()
}

// flushSettled ingests every pending file whose last event is older
// than the settle delay.
func (w *Watcher) flushSettled(ctx context.Context) {
	now := time.Now()
	for path, last := range w.pending {
		if now.Sub(last) < settleDelay {
			continue
		}
		delete(w.pending, path)
		w.ingestFile(ctx, path)
	}
}

// ingestExisting ingests the files already sitting in the inbox.
func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading inbox: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if eligible(path) {
			w.ingestFile(ctx, path)
		}
	}
	return nil
}

// ingestFile reads and ingests one file. Ingestion failures are logged
// and the watcher keeps running; one bad file must not stop the inbox.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Inbox: reading %s failed: %v", path, err)
		return
	}
	if len(data) == 0 {
		return
	}

	receipt, err := w.ingest.Ingest(ctx, data, filepath.Base(path))
	if err != nil {
		logger.Warn("Inbox: ingesting %s failed: %v", path, err)
		return
	}
	logger.Info("Inbox: ingested %s as %s (state %s)", filepath.Base(path), receipt.DocID, receipt.State)
}

// eligible reports whether a path refers to a file the inbox should
// ingest. Hidden files and temp-suffix downloads are skipped.
func eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".tmp", ".part", ".crdownload", ".swp", "":
		return false
	}
	return true
}
