package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// memManifests is an in-memory ManifestStore.
type memManifests struct {
	mu        sync.Mutex
	manifests map[string]*domain.Manifest
	updateErr error
}

func newMemManifests() *memManifests {
	return &memManifests{manifests: make(map[string]*domain.Manifest)}
}

func (m *memManifests) Ensure(_ context.Context, id domain.DocID, sourceFilename string, byteSize int64) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.manifests[id.String()]; ok {
		copied := *existing
		return &copied, nil
	}
	manifest := &domain.Manifest{
		DocID:          id.String(),
		Algo:           id.Algo,
		Hash:           id.Digest,
		SourceFilename: sourceFilename,
		ByteSize:       byteSize,
		State:          domain.TaskStateQueued,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	m.manifests[id.String()] = manifest
	copied := *manifest
	return &copied, nil
}

func (m *memManifests) Get(_ context.Context, id domain.DocID) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest, ok := m.manifests[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: manifest for %s", domain.ErrNotFound, id)
	}
	copied := *manifest
	return &copied, nil
}

func (m *memManifests) Update(_ context.Context, id domain.DocID, apply func(*domain.Manifest)) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return nil, m.updateErr
	}
	manifest, ok := m.manifests[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: manifest for %s", domain.ErrNotFound, id)
	}
	apply(manifest)
	manifest.UpdatedAt = time.Now().UTC()
	copied := *manifest
	return &copied, nil
}

func (m *memManifests) AppendHistory(_ context.Context, id domain.DocID, eventType string, detail map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest, ok := m.manifests[id.String()]
	if !ok {
		return fmt.Errorf("%w: manifest for %s", domain.ErrNotFound, id)
	}
	manifest.History = append(manifest.History, domain.HistoryEvent{
		ID:     uuid.New().String(),
		Type:   eventType,
		Detail: detail,
		At:     time.Now().UTC(),
	})
	return nil
}

func (m *memManifests) state(id domain.DocID) domain.TaskState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if manifest, ok := m.manifests[id.String()]; ok {
		return manifest.State
	}
	return ""
}

func (m *memManifests) historyTypes(id domain.DocID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	manifest, ok := m.manifests[id.String()]
	if !ok {
		return nil
	}
	types := make([]string, len(manifest.History))
	for i, ev := range manifest.History {
		types[i] = ev.Type
	}
	return types
}

// memExtraction is an in-memory ExtractionStore.
type memExtraction struct {
	mu       sync.Mutex
	sources  map[string]string
	data     map[string][]byte
	pages    map[string][]domain.Page
	segments map[string][]domain.Segment
}

func newMemExtraction() *memExtraction {
	return &memExtraction{
		sources:  make(map[string]string),
		data:     make(map[string][]byte),
		pages:    make(map[string][]domain.Page),
		segments: make(map[string][]domain.Segment),
	}
}

func (m *memExtraction) WriteSource(_ context.Context, id domain.DocID, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := "/store/" + id.Digest + "/source" + extOf(filename)
	m.sources[id.String()] = path
	m.data[id.String()] = data
	return path, nil
}

func (m *memExtraction) SourcePath(_ context.Context, id domain.DocID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, ok := m.sources[id.String()]
	if !ok {
		return "", fmt.Errorf("%w: source for %s", domain.ErrNotFound, id)
	}
	return path, nil
}

func (m *memExtraction) WritePages(_ context.Context, id domain.DocID, pages []domain.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[id.String()] = pages
	return nil
}

func (m *memExtraction) WriteSegments(_ context.Context, id domain.DocID, segments []domain.Segment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[id.String()] = segments
	return nil
}

func (m *memExtraction) ReadSegments(_ context.Context, id domain.DocID) ([]domain.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	segments, ok := m.segments[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: segments for %s", domain.ErrNotFound, id)
	}
	return segments, nil
}

func (m *memExtraction) HasSegments(_ context.Context, id domain.DocID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.segments[id.String()]
	return ok, nil
}

func extOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}

// memArtifacts is an in-memory ArtifactStore.
type memArtifacts struct {
	mu    sync.Mutex
	plans map[string]*domain.PlanArtifact
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{plans: make(map[string]*domain.PlanArtifact)}
}

func (m *memArtifacts) WritePlan(_ context.Context, artifact *domain.PlanArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *artifact
	m.plans[artifact.DocID] = &copied
	return nil
}

func (m *memArtifacts) ReadPlan(_ context.Context, id domain.DocID) (*domain.PlanArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	artifact, ok := m.plans[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: plan for %s", domain.ErrNotFound, id)
	}
	copied := *artifact
	return &copied, nil
}

// memNotions is an in-memory NotionStore.
type memNotions struct {
	mu            sync.Mutex
	notions       []domain.Notion
	contributions []domain.Contribution
}

func newMemNotions() *memNotions {
	return &memNotions{}
}

func (m *memNotions) AppendNotion(_ context.Context, n domain.Notion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notions = append(m.notions, n)
	return nil
}

func (m *memNotions) AppendContribution(_ context.Context, c domain.Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions = append(m.contributions, c)
	return nil
}

func (m *memNotions) ListNotions(_ context.Context) ([]domain.Notion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latest := make(map[string]domain.Notion)
	var order []string
	for _, n := range m.notions {
		if _, seen := latest[n.ID]; !seen {
			order = append(order, n.ID)
		}
		if n.Version >= latest[n.ID].Version {
			latest[n.ID] = n
		}
	}
	result := make([]domain.Notion, 0, len(order))
	for _, id := range order {
		result = append(result, latest[id])
	}
	return result, nil
}

func (m *memNotions) MaxVersion(_ context.Context, notionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	max := 0
	for _, n := range m.notions {
		if n.ID == notionID && n.Version > max {
			max = n.Version
		}
	}
	return max, nil
}

// memLexical is an in-memory LexicalIndex with naive substring match.
type memLexical struct {
	mu      sync.Mutex
	records map[string]domain.IndexRecord
	order   []string
}

func newMemLexical() *memLexical {
	return &memLexical{records: make(map[string]domain.IndexRecord)}
}

func (m *memLexical) Index(_ context.Context, rec domain.IndexRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.ID]; !exists {
		m.order = append(m.order, rec.ID)
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *memLexical) Get(_ context.Context, id string) (*domain.IndexRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: record %s", domain.ErrNotFound, id)
	}
	return &rec, nil
}

func (m *memLexical) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *memLexical) Search(_ context.Context, query string, limit int) ([]driven.LexicalHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(query)
	var hits []driven.LexicalHit
	for _, id := range m.order {
		rec, ok := m.records[id]
		if !ok {
			continue
		}
		haystack := strings.ToLower(rec.Title + " " + rec.Text)
		if strings.Contains(haystack, needle) {
			hits = append(hits, driven.LexicalHit{Record: rec, Rank: len(hits)})
			if len(hits) >= limit {
				break
			}
		}
	}
	return hits, nil
}

func (m *memLexical) Close() error { return nil }

// memVectors is an in-memory VectorIndex that scores by dot product.
type memVectors struct {
	mu      sync.Mutex
	entries map[string][]float32
	dim     int
}

func newMemVectors() *memVectors {
	return &memVectors{entries: make(map[string][]float32)}
}

func (m *memVectors) Upsert(_ context.Context, entries []domain.VectorEntry) ([]driven.UpsertIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var issues []driven.UpsertIssue
	for _, e := range entries {
		if m.dim == 0 {
			m.dim = len(e.Embedding)
		}
		if len(e.Embedding) != m.dim {
			issues = append(issues, driven.UpsertIssue{ID: e.ID, Err: domain.ErrDimensionMismatch})
			continue
		}
		m.entries[e.ID] = e.Embedding
	}
	return issues, nil
}

func (m *memVectors) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hits []driven.VectorHit
	for id, vec := range m.entries {
		var dot float64
		for i := range vec {
			if i < len(query) {
				dot += float64(vec[i]) * float64(query[i])
			}
		}
		hits = append(hits, driven.VectorHit{ID: id, Similarity: dot})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *memVectors) Close() error { return nil }

// stubEmbedder returns fixed-dimension embeddings derived from text
// length so tests are deterministic.
type stubEmbedder struct {
	dim int
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vec := make([]float32, s.dim)
	for i, r := range text {
		vec[i%s.dim] += float32(r % 7)
	}
	return vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int              { return s.dim }
func (s *stubEmbedder) ModelName() string            { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

// stubLLM returns a canned response.
type stubLLM struct {
	response string
	err      error
	prompts  []string
	mu       sync.Mutex
}

func (s *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) ModelName() string            { return "stub-model" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

// nopLocker never blocks.
type nopLocker struct{}

func (nopLocker) Acquire(_ context.Context, _ domain.DocID) (func() error, error) {
	return func() error { return nil }, nil
}

// stubExtractor returns canned pages for any path.
type stubExtractor struct {
	pages []domain.Page
	err   error
}

func (s *stubExtractor) SupportedExtensions() []string { return []string{".txt", ".pdf"} }
func (s *stubExtractor) Priority() int                 { return 10 }
func (s *stubExtractor) Extract(_ context.Context, _ string) ([]domain.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pages, nil
}

// stubRegistry returns one fixed extractor.
type stubRegistry struct {
	extractor driven.PageExtractor
	err       error
}

func (s *stubRegistry) ForPath(_ string) (driven.PageExtractor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.extractor, nil
}

// stubOCR recognises pages with a fixed text or error.
type stubOCR struct {
	text  string
	err   error
	calls int
	mu    sync.Mutex
}

func (s *stubOCR) RecognisePage(_ context.Context, _ string, _ int) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}
