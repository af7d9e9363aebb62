package hybrid

import (
	"sort"

	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/result"
)

// Weights scale raw similarity scores per embedded field before merging.
type Weights struct {
	Ingredients float64
	Name        float64
	Allergens   float64
}

// DefaultWeights returns the standard per-field merge weights.
func DefaultWeights() Weights {
	return Weights{Ingredients: 1.0, Name: 0.8, Allergens: 0.6}
}

// For returns the weight for a field.
func (w Weights) For(f field.Field) float64 {
	switch f {
	case field.Ingredients:
		return w.Ingredients
	case field.Name:
		return w.Name
	case field.Allergens:
		return w.Allergens
	default:
		return 0
	}
}

// mergeWeighted combines per-field result sets into one ranked list.
// Scores are multiplied by the field weight, duplicates resolve first-seen
// in field.All() order, and the merged list sorts descending by weighted
// score, truncated to limit.
func mergeWeighted(
	byField map[field.Field][]result.Match, w Weights, limit int,
) []result.Match {
	seen := make(map[string]struct{})
	var merged []result.Match

	for _, f := range field.All() {
		weight := w.For(f)
		for _, m := range byField[f] {
			barcode := m.Product().Barcode
			if _, dup := seen[barcode]; dup {
				continue
			}
			seen[barcode] = struct{}{}
			merged = append(merged, m.Weighted(weight))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// dedupSorted orders concatenated sub-query results by raw score and
// optionally drops repeats first-seen-wins. A zero-distance similarity
// match can also score 1.0, so score ties break in favor of exact hits.
func dedupSorted(matches []result.Match, deduplicate bool, max int) []result.Match {
	sorted := make([]result.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score() != sorted[j].Score() {
			return sorted[i].Score() > sorted[j].Score()
		}
		return sorted[i].Exact() && !sorted[j].Exact()
	})

	if deduplicate {
		seen := make(map[string]struct{}, len(sorted))
		kept := sorted[:0]
		for _, m := range sorted {
			barcode := m.Product().Barcode
			if _, dup := seen[barcode]; dup {
				continue
			}
			seen[barcode] = struct{}{}
			kept = append(kept, m)
		}
		sorted = kept
	}

	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}
