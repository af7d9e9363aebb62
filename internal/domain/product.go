package domain

// KeyPrefix namespaces every Redis key written by prodex.
const KeyPrefix = "prodex:"

// EmbeddingDim is the dimensionality of all product embedding vectors
// (all-MiniLM-L6-v2 and compatible models).
const EmbeddingDim = 384

// DietaryFlags holds the boolean dietary attributes of a product.
type DietaryFlags struct {
	Vegan      bool `json:"vegan"`
	Vegetarian bool `json:"vegetarian"`
	GlutenFree bool `json:"gluten_free"`
	Kosher     bool `json:"kosher"`
	Halal      bool `json:"halal"`
}

// Flag returns the value of the named dietary flag.
// Unknown names report false and not-ok.
func (d DietaryFlags) Flag(name string) (bool, bool) {
	switch name {
	case "vegan":
		return d.Vegan, true
	case "vegetarian":
		return d.Vegetarian, true
	case "gluten_free":
		return d.GlutenFree, true
	case "kosher":
		return d.Kosher, true
	case "halal":
		return d.Halal, true
	default:
		return false, false
	}
}

// Product is a read-only product record owned by the ingestion pipeline.
// The search core never mutates products.
type Product struct {
	Barcode     string
	Name        string
	Ingredients []string
	Allergens   []string
	Dietary     DietaryFlags
}

// HasAnyAllergen reports whether the product's allergen set intersects
// the given exclusion list. Comparison is exact on normalized tags.
func (p Product) HasAnyAllergen(excluded []string) bool {
	if len(excluded) == 0 || len(p.Allergens) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(p.Allergens))
	for _, a := range p.Allergens {
		set[a] = struct{}{}
	}
	for _, e := range excluded {
		if _, ok := set[e]; ok {
			return true
		}
	}
	return false
}
