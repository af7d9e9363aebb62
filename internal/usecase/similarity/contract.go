package similarity

import (
	"context"

	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/filter"
	"github.com/shelfscan/prodex/internal/domain/search/result"
)

// Repository defines the vector search contract.
type Repository interface {
	SearchByField(
		ctx context.Context, f field.Field, vector []float32,
		filters filter.Expression, k int,
	) ([]result.Match, error)
}
