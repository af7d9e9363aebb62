package similarity

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/filter"
	"github.com/shelfscan/prodex/internal/domain/search/result"
)

// mockRepo implements the Repository contract for tests.
type mockRepo struct {
	searchFn func(
		ctx context.Context, f field.Field, vector []float32,
		filters filter.Expression, k int,
	) ([]result.Match, error)
	lastK      int
	lastFilter filter.Expression
}

func (m *mockRepo) SearchByField(
	ctx context.Context, f field.Field, vector []float32,
	filters filter.Expression, k int,
) ([]result.Match, error) {
	m.lastK = k
	m.lastFilter = filters
	if m.searchFn != nil {
		return m.searchFn(ctx, f, vector, filters, k)
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	mr := &mockRepo{}
	return New(mr, DefaultCandidateMultiplier, zap.NewNop()), mr
}

func match(barcode string, score float64, p domain.Product) result.Match {
	p.Barcode = barcode
	return result.NewMatch(p, score, field.Ingredients)
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}
