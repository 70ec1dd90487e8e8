// Package segmenter turns extracted pages into token-bounded segments.
package segmenter

import (
	"strings"

	"github.com/google/uuid"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// DefaultTargetTokens is the default flush threshold per segment.
const DefaultTargetTokens = 1000

// MinTargetTokens is the floor below which a configured target is not
// allowed to drop. Very small segments fragment the index without
// improving retrieval.
const MinTargetTokens = 200

// Segmenter accumulates pages into a running buffer and flushes a
// segment once the buffer's estimated token count reaches the target.
// Segment boundaries always fall on page boundaries; a page is never
// split across two segments.
type Segmenter struct {
	targetTokens int
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithTargetTokens sets the flush threshold in estimated tokens.
func WithTargetTokens(target int) Option {
	return func(s *Segmenter) {
		if target > 0 {
			s.targetTokens = target
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		targetTokens: DefaultTargetTokens,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.targetTokens < MinTargetTokens {
		s.targetTokens = MinTargetTokens
	}

	return s
}

// SegmentPages splits pages into segments for a document. Trailing
// content below the threshold still flushes as a final segment, so no
// extracted text is ever dropped. Pages with empty text advance the
// page range but contribute no tokens.
func (s *Segmenter) SegmentPages(docID domain.DocID, pages []domain.Page) []domain.Segment {
	if len(pages) == 0 {
		return nil
	}

	var segments []domain.Segment

	var buf strings.Builder
	bufTokens := 0
	pageStart := pages[0].Number
	pageEnd := pageStart

	flush := func() {
		if bufTokens == 0 {
			return
		}
		segments = append(segments, domain.Segment{
			ID:            uuid.New().String(),
			DocID:         docID.String(),
			PageStart:     pageStart,
			PageEnd:       pageEnd,
			Text:          strings.TrimSpace(buf.String()),
			TokenEstimate: bufTokens,
		})
		buf.Reset()
		bufTokens = 0
	}

	for _, page := range pages {
		if bufTokens == 0 {
			pageStart = page.Number
		}
		pageEnd = page.Number

		if page.Text != "" {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(page.Text)
			bufTokens += domain.EstimateTokens(page.Text)
		}

		if bufTokens >= s.targetTokens {
			flush()
		}
	}

	flush()
	return segments
}
