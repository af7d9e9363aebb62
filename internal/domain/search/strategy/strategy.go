// Package strategy names the search mechanism reported back to callers.
package strategy

// Strategy is the search mechanism chosen for a request.
type Strategy string

const (
	// Exact is a direct barcode lookup.
	Exact Strategy = "exact"
	// Similarity is a vector-similarity search.
	Similarity Strategy = "similarity"
	// Hybrid is a multi-modal request combining several sub-queries.
	Hybrid Strategy = "hybrid"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Exact || s == Similarity || s == Hybrid
}
