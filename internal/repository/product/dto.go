package product

import "github.com/shelfscan/prodex/internal/domain"

// productDoc is the JSON document persisted per product. The embedding
// vectors are storage-only and never leave the repository layer.
type productDoc struct {
	Barcode     string        `json:"barcode"`
	Name        string        `json:"name"`
	Ingredients []string      `json:"ingredients"`
	Allergens   []string      `json:"allergens"`
	Dietary     dietaryDoc    `json:"dietary"`
	Embeddings  embeddingsDoc `json:"embeddings"`
}

type dietaryDoc struct {
	Vegan      bool `json:"vegan"`
	Vegetarian bool `json:"vegetarian"`
	GlutenFree bool `json:"gluten_free"`
	Kosher     bool `json:"kosher"`
	Halal      bool `json:"halal"`
}

type embeddingsDoc struct {
	Ingredients []float32 `json:"ingredients"`
	Name        []float32 `json:"name"`
	Allergens   []float32 `json:"allergens"`
}

// Embeddings carries the three precomputed field vectors for an upsert.
type Embeddings struct {
	Ingredients []float32
	Name        []float32
	Allergens   []float32
}

func (d *productDoc) toDomain() domain.Product {
	return domain.Product{
		Barcode:     d.Barcode,
		Name:        d.Name,
		Ingredients: d.Ingredients,
		Allergens:   d.Allergens,
		Dietary: domain.DietaryFlags{
			Vegan:      d.Dietary.Vegan,
			Vegetarian: d.Dietary.Vegetarian,
			GlutenFree: d.Dietary.GlutenFree,
			Kosher:     d.Dietary.Kosher,
			Halal:      d.Dietary.Halal,
		},
	}
}

func fromDomain(p domain.Product, emb Embeddings) productDoc {
	return productDoc{
		Barcode:     p.Barcode,
		Name:        p.Name,
		Ingredients: p.Ingredients,
		Allergens:   p.Allergens,
		Dietary: dietaryDoc{
			Vegan:      p.Dietary.Vegan,
			Vegetarian: p.Dietary.Vegetarian,
			GlutenFree: p.Dietary.GlutenFree,
			Kosher:     p.Dietary.Kosher,
			Halal:      p.Dietary.Halal,
		},
		Embeddings: embeddingsDoc{
			Ingredients: emb.Ingredients,
			Name:        emb.Name,
			Allergens:   emb.Allergens,
		},
	}
}
