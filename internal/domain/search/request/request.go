// Package request models a product search request descriptor.
package request

import "fmt"

// Default and maximum result counts.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filters narrows similarity search results.
type Filters struct {
	dietary          map[string]bool
	excludeAllergens []string
	limit            int
	minScore         float64
}

// NewFilters validates and creates search filters.
// dietary maps flag names (vegan, vegetarian, gluten_free, kosher, halal)
// to required values; every requested flag must match the product exactly.
// excludeAllergens drops any product whose allergen set intersects it.
// limit caps the result count (0 means DefaultLimit).
// minScore is the minimum cosine similarity in [0,1] (default 0.0).
func NewFilters(dietary map[string]bool, excludeAllergens []string, limit int, minScore float64) (Filters, error) {
	if limit < 0 {
		return Filters{}, fmt.Errorf("limit must be non-negative, got %d", limit)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if minScore < 0 || minScore > 1 {
		return Filters{}, fmt.Errorf("min score must be in [0,1], got %g", minScore)
	}
	return Filters{
		dietary:          dietary,
		excludeAllergens: excludeAllergens,
		limit:            limit,
		minScore:         minScore,
	}, nil
}

// DefaultFilters returns filters with default limit and no constraints.
func DefaultFilters() Filters {
	return Filters{limit: DefaultLimit}
}

// Dietary returns the required dietary flags.
func (f Filters) Dietary() map[string]bool { return f.dietary }

// ExcludeAllergens returns the allergen exclusion list.
func (f Filters) ExcludeAllergens() []string { return f.excludeAllergens }

// Limit returns the maximum result count.
func (f Filters) Limit() int { return f.limit }

// MinScore returns the similarity score floor.
func (f Filters) MinScore() float64 { return f.minScore }

// Request describes a single product lookup: an exact barcode, free text,
// or both. Strategy selection prefers the barcode.
type Request struct {
	barcode string
	text    string
	filters Filters
}

// New creates a search request. Presence of barcode/text is not validated
// here: a request with neither resolves to an empty result downstream.
func New(barcode, text string, filters Filters) Request {
	if filters.limit == 0 {
		filters.limit = DefaultLimit
	}
	return Request{barcode: barcode, text: text, filters: filters}
}

// Barcode returns the explicit exact key, if any.
func (r Request) Barcode() string { return r.barcode }

// Text returns the free-text query, if any.
func (r Request) Text() string { return r.text }

// Filters returns the result filters.
func (r Request) Filters() Filters { return r.filters }

// IsEmpty reports whether the request carries neither barcode nor text.
func (r Request) IsEmpty() bool { return r.barcode == "" && r.text == "" }
