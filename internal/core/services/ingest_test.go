package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

func ingestUnderTest(t *testing.T, runner ExtractionRunner) (*IngestService, *memManifests, *memExtraction, *Scheduler) {
	t.Helper()
	manifests := newMemManifests()
	extraction := newMemExtraction()
	scheduler := NewScheduler(NewTaskRegistry(), manifests, nopLocker{}, runner, 2)
	return NewIngestService(manifests, extraction, scheduler), manifests, extraction, scheduler
}

func TestIngest_NewDocument(t *testing.T) {
	runner := &stubRunner{pages: 1, segments: 1}
	service, manifests, extraction, scheduler := ingestUnderTest(t, runner)

	data := []byte("the quick brown fox jumps over the lazy dog and that is that for now")
	receipt, err := service.Ingest(context.Background(), data, "fox_report-2021.txt")
	require.NoError(t, err)

	assert.Equal(t, domain.ComputeDocID(data), receipt.DocID)
	assert.Equal(t, domain.TaskStateQueued, receipt.State)
	assert.False(t, receipt.AlreadyExtracted)

	// Source bytes landed before the manifest was touched.
	_, err = extraction.SourcePath(context.Background(), receipt.DocID)
	assert.NoError(t, err)

	scheduler.Wait()
	assert.Equal(t, domain.TaskStateDone, manifests.state(receipt.DocID))
	assert.Contains(t, manifests.historyTypes(receipt.DocID), "ingested")
}

func TestIngest_EmptyDocumentRejected(t *testing.T) {
	service, _, _, _ := ingestUnderTest(t, &stubRunner{})

	_, err := service.Ingest(context.Background(), nil, "empty.txt")
	assert.Error(t, err)
}

func TestIngest_DeterministicDocID(t *testing.T) {
	runner := &stubRunner{pages: 1, segments: 1}
	service, _, _, scheduler := ingestUnderTest(t, runner)

	data := []byte("identical bytes in, identical identifier out, every single time")

	first, err := service.Ingest(context.Background(), data, "a.txt")
	require.NoError(t, err)
	scheduler.Wait()

	second, err := service.Ingest(context.Background(), data, "renamed.txt")
	require.NoError(t, err)
	scheduler.Wait()

	assert.Equal(t, first.DocID, second.DocID)
}

func TestIngest_IdempotentShortCircuit(t *testing.T) {
	runner := &stubRunner{pages: 2, segments: 1}
	service, _, _, scheduler := ingestUnderTest(t, runner)

	data := []byte("a document that will be uploaded twice with the same content both times")

	_, err := service.Ingest(context.Background(), data, "doc.txt")
	require.NoError(t, err)
	scheduler.Wait()
	require.Equal(t, int32(1), runner.runs.Load())

	receipt, err := service.Ingest(context.Background(), data, "doc.txt")
	require.NoError(t, err)
	scheduler.Wait()

	assert.True(t, receipt.AlreadyExtracted)
	assert.Equal(t, domain.TaskStateDone, receipt.State)
	assert.Equal(t, int32(1), runner.runs.Load(), "extraction must not re-run")
}

func TestIngest_PrefillInference(t *testing.T) {
	runner := &stubRunner{pages: 1, segments: 1}
	service, _, _, scheduler := ingestUnderTest(t, runner)

	data := []byte("the study was conducted over the course of the year and the results " +
		"showed that the treatment group improved for the majority of the cases")
	receipt, err := service.Ingest(context.Background(), data, "hip_fracture_trial-2019.txt")
	require.NoError(t, err)
	scheduler.Wait()

	prefill, err := service.GetPrefill(context.Background(), receipt.DocID)
	require.NoError(t, err)

	assert.Equal(t, "hip fracture trial 2019", prefill["title"])
	assert.Equal(t, "2019", prefill["year"])
	assert.Equal(t, "en", prefill["language"])
}

func TestIngest_OverridesWinOverPrefill(t *testing.T) {
	runner := &stubRunner{pages: 1, segments: 1}
	service, _, _, scheduler := ingestUnderTest(t, runner)

	data := []byte("some document content that is long enough to be a real document body")
	receipt, err := service.Ingest(context.Background(), data, "draft_v2.txt")
	require.NoError(t, err)
	scheduler.Wait()

	merged, err := service.ApplyOverrides(context.Background(), receipt.DocID, map[string]string{
		"title": "Final Report",
	})
	require.NoError(t, err)
	assert.Equal(t, "Final Report", merged["title"])

	// The effective view keeps the override on subsequent reads.
	prefill, err := service.GetPrefill(context.Background(), receipt.DocID)
	require.NoError(t, err)
	assert.Equal(t, "Final Report", prefill["title"])
}

func TestIngest_StatusUnknownDocument(t *testing.T) {
	service, _, _, _ := ingestUnderTest(t, &stubRunner{})

	_, err := service.Status(context.Background(), docIDFor(t, 40))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
