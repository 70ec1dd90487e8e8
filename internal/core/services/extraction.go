package services

import (
	"context"
	"fmt"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
	"github.com/evidentia-labs/evidentia/internal/logger"
	"github.com/evidentia-labs/evidentia/internal/postprocessors/segmenter"
)

// Ensure ExtractionPipeline implements the interface.
var _ ExtractionRunner = (*ExtractionPipeline)(nil)

// ExtractionPipeline turns a stored source document into persisted
// pages and segments, then feeds the segments into the indexes.
type ExtractionPipeline struct {
	extraction driven.ExtractionStore
	extractors driven.ExtractorRegistry
	ocr        driven.OCRFallback
	segmenter  *segmenter.Segmenter
	lexical    driven.LexicalIndex
	vectors    driven.VectorIndex
	embedder   driven.EmbeddingService
}

// NewExtractionPipeline creates a pipeline. ocr, vectors and embedder
// are optional; without them OCR recovery and vector indexing are
// skipped.
func NewExtractionPipeline(
	extraction driven.ExtractionStore,
	extractors driven.ExtractorRegistry,
	ocr driven.OCRFallback,
	seg *segmenter.Segmenter,
	lexical driven.LexicalIndex,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingService,
) *ExtractionPipeline {
	return &ExtractionPipeline{
		extraction: extraction,
		extractors: extractors,
		ocr:        ocr,
		segmenter:  seg,
		lexical:    lexical,
		vectors:    vectors,
		embedder:   embedder,
	}
}

// Run extracts, segments, persists and indexes one document. The page
// write, segment write and manifest update are separate atomic steps;
// a crash between them leaves counts that readers must tolerate as
// temporarily lagging the files.
func (p *ExtractionPipeline) Run(ctx context.Context, id domain.DocID) (int, int, error) {
	sourcePath, err := p.extraction.SourcePath(ctx, id)
	if err != nil {
		return 0, 0, fmt.Errorf("locate source: %w", err)
	}

	extractor, err := p.extractors.ForPath(sourcePath)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	pages, err := extractor.Extract(ctx, sourcePath)
	if err != nil {
		return 0, 0, err
	}
	logger.Debug("Extraction %s: %d pages", id, len(pages))

	pages = p.recoverEmptyPages(ctx, id, sourcePath, pages)

	segments := p.segmenter.SegmentPages(id, pages)
	logger.Debug("Extraction %s: %d segments", id, len(segments))

	if err := p.extraction.WritePages(ctx, id, pages); err != nil {
		return 0, 0, fmt.Errorf("write pages: %w", err)
	}
	if err := p.extraction.WriteSegments(ctx, id, segments); err != nil {
		return 0, 0, fmt.Errorf("write segments: %w", err)
	}

	if err := p.indexSegments(ctx, id, segments); err != nil {
		return 0, 0, err
	}

	return len(pages), len(segments), nil
}

// recoverEmptyPages runs the OCR fallback over pages with no directly
// extractable text. OCR failures are logged and the page is kept with
// empty text; partial failure is never fatal to the document.
func (p *ExtractionPipeline) recoverEmptyPages(ctx context.Context, id domain.DocID, sourcePath string, pages []domain.Page) []domain.Page {
	if p.ocr == nil {
		return pages
	}

	for i := range pages {
		if pages[i].Text != "" {
			continue
		}
		text, err := p.ocr.RecognisePage(ctx, sourcePath, pages[i].Number)
		if err != nil {
			logger.Warn("Extraction %s: OCR failed on page %d: %v", id, pages[i].Number, err)
			continue
		}
		pages[i].Text = text
		pages[i].UsedFallback = true
	}
	return pages
}

// indexSegments writes each segment into the lexical index and, when an
// embedder is wired, the vector index. The two indexes are updated as
// separate steps; a search between them may see only one side, which is
// the documented eventual-consistency window.
func (p *ExtractionPipeline) indexSegments(ctx context.Context, id domain.DocID, segments []domain.Segment) error {
	for _, seg := range segments {
		rec := domain.IndexRecord{
			ID:    seg.ID,
			DocID: id.String(),
			Kind:  "segment",
			Text:  seg.Text,
		}
		if err := p.lexical.Index(ctx, rec); err != nil {
			return fmt.Errorf("index segment %s: %w", seg.ID, err)
		}
	}

	if p.vectors == nil || p.embedder == nil || len(segments) == 0 {
		return nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		// Lexical search still works without vectors; degrade rather
		// than failing the whole extraction.
		logger.Warn("Extraction %s: embedding failed, skipping vector index: %v", id, err)
		return nil
	}

	entries := make([]domain.VectorEntry, len(segments))
	for i, seg := range segments {
		entries[i] = domain.VectorEntry{ID: seg.ID, Embedding: embeddings[i]}
	}

	issues, err := p.vectors.Upsert(ctx, entries)
	if err != nil {
		logger.Warn("Extraction %s: vector upsert failed: %v", id, err)
		return nil
	}
	for _, issue := range issues {
		logger.Warn("Extraction %s: vector entry %s rejected: %v", id, issue.ID, issue.Err)
	}
	return nil
}
