// Package result models similarity matches and the hybrid response envelope.
package result

import (
	"time"

	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/strategy"
)

// ExactScore is the synthetic similarity score carried by exact-key hits.
const ExactScore = 1.0

// Match pairs a product with a similarity score in [0,1] and the embedded
// field that produced it. Transient: constructed per query, never persisted.
type Match struct {
	product domain.Product
	score   float64
	field   field.Field
	exact   bool
}

// NewMatch creates a similarity match.
func NewMatch(p domain.Product, score float64, f field.Field) Match {
	return Match{product: p, score: score, field: f}
}

// ExactMatch wraps a product found by exact-key lookup with score 1.0.
// A zero-distance similarity hit also scores 1.0, so exactness is
// carried separately for tie-breaking.
func ExactMatch(p domain.Product) Match {
	return Match{product: p, score: ExactScore, field: field.Name, exact: true}
}

// Product returns the matched product.
func (m Match) Product() domain.Product { return m.product }

// Score returns the similarity score.
func (m Match) Score() float64 { return m.score }

// Field returns the embedded field that produced the match.
func (m Match) Field() field.Field { return m.field }

// Exact reports whether the match came from an exact-key lookup.
func (m Match) Exact() bool { return m.exact }

// Weighted returns a copy of the match with its score multiplied by w.
func (m Match) Weighted(w float64) Match {
	m.score *= w
	return m
}

// Hybrid is the response envelope: matches sorted by descending relevance,
// the strategy actually used, and the measured response time.
type Hybrid struct {
	matches  []Match
	strategy strategy.Strategy
	elapsed  time.Duration
}

// NewHybrid creates a response envelope.
func NewHybrid(matches []Match, s strategy.Strategy, elapsed time.Duration) Hybrid {
	return Hybrid{matches: matches, strategy: s, elapsed: elapsed}
}

// Empty creates an empty envelope carrying the strategy in effect and the
// elapsed time up to the failure or short-circuit point.
func Empty(s strategy.Strategy, elapsed time.Duration) Hybrid {
	return Hybrid{strategy: s, elapsed: elapsed}
}

// Matches returns the ordered matches.
func (h Hybrid) Matches() []Match { return h.matches }

// Products returns the matched products in result order.
func (h Hybrid) Products() []domain.Product {
	products := make([]domain.Product, len(h.matches))
	for i, m := range h.matches {
		products[i] = m.Product()
	}
	return products
}

// Strategy returns the search mechanism that produced the envelope.
func (h Hybrid) Strategy() strategy.Strategy { return h.strategy }

// Total returns the result count.
func (h Hybrid) Total() int { return len(h.matches) }

// Elapsed returns the measured response time.
func (h Hybrid) Elapsed() time.Duration { return h.elapsed }
