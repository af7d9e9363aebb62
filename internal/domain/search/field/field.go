// Package field enumerates the independently embedded product fields.
package field

// Field names an embedded product attribute with its own vector index.
type Field string

const (
	// Ingredients matches against the ingredient-list embedding.
	Ingredients Field = "ingredients"
	// Name matches against the product-name embedding.
	Name Field = "name"
	// Allergens matches against the allergen-tag embedding.
	Allergens Field = "allergens"
)

// All returns the fields in merge order. The order is load-bearing:
// multi-field merges resolve duplicates first-seen in this order.
func All() []Field {
	return []Field{Ingredients, Name, Allergens}
}

// IsValid checks if the field is one of the supported values.
func (f Field) IsValid() bool {
	return f == Ingredients || f == Name || f == Allergens
}
