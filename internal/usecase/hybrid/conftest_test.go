package hybrid

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/request"
	"github.com/shelfscan/prodex/internal/domain/search/result"
	"github.com/shelfscan/prodex/internal/usecase/lookup"
)

// mockLookup implements the Lookuper contract for tests.
type mockLookup struct {
	lookupFn     func(ctx context.Context, raw string) (domain.Product, error)
	stats        lookup.CacheStats
	clearCalls   int
	lookupCalls  int
	lastLookedUp string
}

func (m *mockLookup) Lookup(ctx context.Context, raw string) (domain.Product, error) {
	m.lookupCalls++
	m.lastLookedUp = raw
	if m.lookupFn != nil {
		return m.lookupFn(ctx, raw)
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func (m *mockLookup) Stats() lookup.CacheStats { return m.stats }
func (m *mockLookup) ClearCache()              { m.clearCalls++ }

// mockSearcher implements the Searcher contract for tests.
type mockSearcher struct {
	searchFn func(
		ctx context.Context, f field.Field, vector []float32, filters request.Filters,
	) []result.Match
}

func (m *mockSearcher) SearchByField(
	ctx context.Context, f field.Field, vector []float32, filters request.Filters,
) []result.Match {
	if m.searchFn != nil {
		return m.searchFn(ctx, f, vector, filters)
	}
	return nil
}

// mockEmbedder implements the Embedder contract for tests.
type mockEmbedder struct {
	result   domain.EmbeddingResult
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	return m.result, m.err
}

func newTestService(t *testing.T) (*Service, *mockLookup, *mockSearcher, *mockEmbedder) {
	t.Helper()
	ml := &mockLookup{}
	ms := &mockSearcher{}
	me := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3, 0.4}}}
	svc := New(ml, ms, me, Config{
		AllergenKeywords:   []string{"allergy", "allergen", "nuts", "gluten", "dairy", "soy"},
		IngredientKeywords: []string{"ingredient", "contains", "made with", "organic"},
	}, zap.NewNop())
	return svc, ml, ms, me
}

func product(barcode, name string) domain.Product {
	return domain.Product{Barcode: barcode, Name: name}
}

func simMatch(barcode string, score float64, f field.Field) result.Match {
	return result.NewMatch(product(barcode, barcode), score, f)
}

func textRequest(text string) request.Request {
	return request.New("", text, request.DefaultFilters())
}
