package hybrid

import (
	"context"

	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/request"
	"github.com/shelfscan/prodex/internal/domain/search/result"
	"github.com/shelfscan/prodex/internal/usecase/lookup"
)

// Lookuper resolves exact barcodes and owns the lookup cache.
type Lookuper interface {
	Lookup(ctx context.Context, raw string) (domain.Product, error)
	Stats() lookup.CacheStats
	ClearCache()
}

// Searcher runs per-field vector similarity search. It degrades to an
// empty slice on failure, never an error.
type Searcher interface {
	SearchByField(
		ctx context.Context, f field.Field, vector []float32, filters request.Filters,
	) []result.Match
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
