package services

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
	"github.com/evidentia-labs/evidentia/internal/logger"
)

// DefaultWorkers is the default extraction worker pool size. Extraction
// is I/O-bound, so a small pool avoids oversubscribing the filesystem
// and any external OCR or model calls.
const DefaultWorkers = 2

// ExtractionRunner executes one extraction to completion and reports
// the page and segment counts it produced.
type ExtractionRunner interface {
	Run(ctx context.Context, id domain.DocID) (pages, segments int, err error)
}

// Scheduler coordinates background extraction jobs. It enforces the
// per-document state machine queued -> running -> {done, failed} and
// guarantees at most one extraction runs per document at any time:
// within the process through the task registry, across processes
// through the advisory file lock.
type Scheduler struct {
	registry  *TaskRegistry
	manifests driven.ManifestStore
	locker    driven.DocLocker
	runner    ExtractionRunner

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewScheduler creates a scheduler with a bounded worker pool.
// workers <= 0 falls back to DefaultWorkers.
func NewScheduler(
	registry *TaskRegistry,
	manifests driven.ManifestStore,
	locker driven.DocLocker,
	runner ExtractionRunner,
	workers int,
) *Scheduler {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{
		registry:  registry,
		manifests: manifests,
		locker:    locker,
		runner:    runner,
		sem:       make(chan struct{}, workers),
	}
}

// Enqueue submits an extraction job for a document. If a job for the
// same document is already queued or running, the call reports that
// state and submits nothing; only the registry transition decides
// admission, so two racing enqueues cannot both submit.
func (s *Scheduler) Enqueue(ctx context.Context, id domain.DocID) (domain.TaskState, error) {
	for {
		current, _ := s.registry.Get(id)
		if current == domain.TaskStateQueued || current == domain.TaskStateRunning {
			logger.Debug("Enqueue %s: already %s, skipping", id, current)
			return current, nil
		}
		if s.registry.CompareAndSwap(id, current, domain.TaskStateQueued) {
			break
		}
	}

	if _, err := s.manifests.Update(ctx, id, func(m *domain.Manifest) {
		m.State = domain.TaskStateQueued
		m.FailureReason = ""
	}); err != nil {
		s.registry.Set(id, domain.TaskStateFailed)
		return domain.TaskStateFailed, err
	}
	if err := s.manifests.AppendHistory(ctx, id, "queued", nil); err != nil {
		logger.Warn("Enqueue %s: history append failed: %v", id, err)
	}

	s.wg.Add(1)
	go s.work(ctx, id)

	return domain.TaskStateQueued, nil
}

// Wait blocks until every submitted job has finished. Jobs are not
// cancellable; once enqueued they run to completion or failure so the
// on-disk state stays consistent.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// work executes a single extraction job inside the worker pool.
func (s *Scheduler) work(ctx context.Context, id domain.DocID) {
	defer s.wg.Done()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	release, err := s.locker.Acquire(ctx, id)
	if err != nil {
		logger.Warn("Job %s: lock acquisition failed: %v", id, err)
		s.fail(ctx, id, err)
		return
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("Job %s: lock release failed: %v", id, err)
		}
	}()

	if !s.registry.CompareAndSwap(id, domain.TaskStateQueued, domain.TaskStateRunning) {
		// Another worker already picked this document up.
		return
	}

	if _, err := s.manifests.Update(ctx, id, func(m *domain.Manifest) {
		m.State = domain.TaskStateRunning
	}); err != nil {
		logger.Warn("Job %s: manifest update failed: %v", id, err)
		s.fail(ctx, id, err)
		return
	}

	logger.Debug("Job %s: extraction started", id)
	pages, segments, err := s.runner.Run(ctx, id)
	if err != nil {
		logger.Warn("Job %s: extraction failed: %v", id, err)
		s.fail(ctx, id, err)
		return
	}

	s.registry.Set(id, domain.TaskStateDone)
	if _, err := s.manifests.Update(ctx, id, func(m *domain.Manifest) {
		m.State = domain.TaskStateDone
		m.PageCount = pages
		m.SegmentCount = segments
	}); err != nil {
		logger.Warn("Job %s: manifest update failed: %v", id, err)
		return
	}
	if err := s.manifests.AppendHistory(ctx, id, "extraction_done", map[string]string{
		"pages":    strconv.Itoa(pages),
		"segments": strconv.Itoa(segments),
	}); err != nil {
		logger.Warn("Job %s: history append failed: %v", id, err)
	}

	logger.Info("Job %s: done (%d pages, %d segments)", id, pages, segments)
}

// fail marks a job failed with a reason from the closed taxonomy.
func (s *Scheduler) fail(ctx context.Context, id domain.DocID, cause error) {
	reason := failureReason(cause)

	s.registry.Set(id, domain.TaskStateFailed)
	if _, err := s.manifests.Update(ctx, id, func(m *domain.Manifest) {
		m.State = domain.TaskStateFailed
		m.FailureReason = reason
	}); err != nil {
		logger.Warn("Job %s: recording failure failed: %v", id, err)
		return
	}
	if err := s.manifests.AppendHistory(ctx, id, "extraction_failed", map[string]string{
		"reason": reason,
		"error":  cause.Error(),
	}); err != nil {
		logger.Warn("Job %s: history append failed: %v", id, err)
	}
}

// failureReason maps an error to the closed manifest reason taxonomy.
// A raw error string is never the sole failure signal.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLockTimeout):
		return domain.ReasonLockTimeout
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return domain.ReasonUpstreamUnavailable
	default:
		return domain.ReasonExtractionFailed
	}
}
