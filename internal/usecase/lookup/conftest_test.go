package lookup

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/domain"
)

// mockRepo implements the Repository contract for tests.
type mockRepo struct {
	findFn func(ctx context.Context, barcode string) (domain.Product, error)
	calls  int
}

func (m *mockRepo) FindByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	m.calls++
	if m.findFn != nil {
		return m.findFn(ctx, barcode)
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	mr := &mockRepo{}
	return New(mr, 5*time.Minute, 100*time.Millisecond, zap.NewNop()), mr
}

func testProduct(barcode string) domain.Product {
	return domain.Product{
		Barcode:     barcode,
		Name:        "Almond Milk",
		Ingredients: []string{"water", "almonds"},
		Allergens:   []string{"tree nuts"},
		Dietary:     domain.DietaryFlags{Vegan: true, Vegetarian: true, GlutenFree: true},
	}
}
