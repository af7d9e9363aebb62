package similarity

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/filter"
	"github.com/shelfscan/prodex/internal/domain/search/request"
	"github.com/shelfscan/prodex/internal/domain/search/result"
)

// DefaultCandidateMultiplier sizes the KNN candidate pool relative to the
// requested limit, leaving headroom for post-filter attrition.
const DefaultCandidateMultiplier = 3

// Service runs per-field vector similarity search with metadata filtering.
// Filters are pushed down to the index as TAG pre-filters and re-applied
// in memory, so results stay correct when the index lags behind writes.
type Service struct {
	repo       Repository
	multiplier int
	logger     *zap.Logger
}

// New creates a similarity service. multiplier below 1 falls back to
// DefaultCandidateMultiplier.
func New(repo Repository, multiplier int, logger *zap.Logger) *Service {
	if multiplier < 1 {
		multiplier = DefaultCandidateMultiplier
	}
	return &Service{repo: repo, multiplier: multiplier, logger: logger}
}

// SearchByField returns up to filters.Limit() matches for one embedded
// field, sorted by descending similarity. A missing vector or a backend
// failure degrades to an empty slice, never an error.
func (s *Service) SearchByField(
	ctx context.Context, f field.Field, vector []float32, filters request.Filters,
) []result.Match {
	if len(vector) == 0 {
		return nil
	}

	k := filters.Limit() * s.multiplier
	expr := s.buildExpression(filters)

	matches, err := s.repo.SearchByField(ctx, f, vector, expr, k)
	if err != nil {
		s.logger.Warn("Similarity search failed",
			zap.String("field", string(f)),
			zap.Error(err),
		)
		return nil
	}

	matches = applyFilters(matches, filters)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score() > matches[j].Score()
	})

	if len(matches) > filters.Limit() {
		matches = matches[:filters.Limit()]
	}
	return matches
}

// buildExpression translates request filters into an index pre-filter.
// An inexpressible filter set degrades to an unfiltered query: the
// in-memory pass in applyFilters still enforces the constraints.
func (s *Service) buildExpression(filters request.Filters) filter.Expression {
	must := make([]filter.Condition, 0, len(filters.Dietary()))
	keys := make([]string, 0, len(filters.Dietary()))
	for flag := range filters.Dietary() {
		keys = append(keys, flag)
	}
	sort.Strings(keys)
	for _, flag := range keys {
		c, err := filter.NewMatch(flag, strconv.FormatBool(filters.Dietary()[flag]))
		if err != nil {
			s.logger.Warn("Skipping dietary pre-filter", zap.String("flag", flag), zap.Error(err))
			continue
		}
		must = append(must, c)
	}

	mustNot := make([]filter.Condition, 0, len(filters.ExcludeAllergens()))
	for _, allergen := range filters.ExcludeAllergens() {
		c, err := filter.NewMatch("allergens", allergen)
		if err != nil {
			continue
		}
		mustNot = append(mustNot, c)
	}

	expr, err := filter.NewExpression(must, mustNot)
	if err != nil {
		s.logger.Warn("Pre-filter too large, falling back to post-filtering", zap.Error(err))
		return filter.Expression{}
	}
	return expr
}

// applyFilters enforces dietary, allergen, and score constraints in memory.
func applyFilters(matches []result.Match, filters request.Filters) []result.Match {
	kept := matches[:0]
	for _, m := range matches {
		if m.Score() < filters.MinScore() {
			continue
		}
		if !matchesDietary(m, filters.Dietary()) {
			continue
		}
		if m.Product().HasAnyAllergen(filters.ExcludeAllergens()) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

func matchesDietary(m result.Match, dietary map[string]bool) bool {
	for flag, want := range dietary {
		got, ok := m.Product().Dietary.Flag(flag)
		if !ok || got != want {
			return false
		}
	}
	return true
}
