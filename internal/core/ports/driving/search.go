package driving

import (
	"context"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// SearchService provides hybrid retrieval to external actors.
type SearchService interface {
	// Search ranks indexed segments and notions against the query
	// strings, combining lexical and vector signals.
	Search(ctx context.Context, queries []string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
