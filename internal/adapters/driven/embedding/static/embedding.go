// Package static provides a deterministic, offline embedding service.
//
// Texts are embedded as L2-normalised hashed bag-of-words vectors.
// The result has none of the semantic quality of a learned model, but
// it is fast, dependency-free and stable across runs, which makes
// vector search usable with no provider configured and keeps tests
// deterministic.
package static

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/evidentia-labs/evidentia/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the default vector size.
const DefaultDimensions = 256

// EmbeddingService embeds text as hashed bag-of-words vectors.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a static embedding service. A dimensions
// of 0 selects the default.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?()[]\"'")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(s.dimensions)]++
	}

	// L2-normalise so cosine similarity reduces to a dot product scale.
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		norm := float32(math.Sqrt(sum))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return "static-bow"
}

// Ping always succeeds; there is no remote service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
