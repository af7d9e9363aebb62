package chi

import (
	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/search/result"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type filtersDTO struct {
	Dietary          map[string]bool `json:"dietary,omitempty"`
	ExcludeAllergens []string        `json:"exclude_allergens,omitempty"`
	Limit            int             `json:"limit,omitempty"`
	MinScore         float64         `json:"min_score,omitempty"`
}

type queryDTO struct {
	Barcode string      `json:"barcode,omitempty"`
	Text    string      `json:"text,omitempty"`
	Filters *filtersDTO `json:"filters,omitempty"`
}

type multiModalOptionsDTO struct {
	MaxResults  int   `json:"max_results,omitempty"`
	Deduplicate *bool `json:"deduplicate,omitempty"` // nil means true
}

type multiModalRequestDTO struct {
	Queries []queryDTO           `json:"queries"`
	Options multiModalOptionsDTO `json:"options"`
}

type dietaryDTO struct {
	Vegan      bool `json:"vegan"`
	Vegetarian bool `json:"vegetarian"`
	GlutenFree bool `json:"gluten_free"`
	Kosher     bool `json:"kosher"`
	Halal      bool `json:"halal"`
}

type productDTO struct {
	Barcode      string     `json:"barcode"`
	Name         string     `json:"name"`
	Ingredients  []string   `json:"ingredients,omitempty"`
	Allergens    []string   `json:"allergens,omitempty"`
	Dietary      dietaryDTO `json:"dietary"`
	Score        float64    `json:"score"`
	MatchedField string     `json:"matched_field"`
}

type searchResponseDTO struct {
	Products       []productDTO `json:"products"`
	Strategy       string       `json:"strategy"`
	TotalResults   int          `json:"total_results"`
	ResponseTimeMs int64        `json:"response_time_ms"`
}

type cacheStatsDTO struct {
	Size       int `json:"size"`
	TTLSeconds int `json:"ttl_seconds"`
}

type healthResponseDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func dietaryToDTO(d domain.DietaryFlags) dietaryDTO {
	return dietaryDTO{
		Vegan:      d.Vegan,
		Vegetarian: d.Vegetarian,
		GlutenFree: d.GlutenFree,
		Kosher:     d.Kosher,
		Halal:      d.Halal,
	}
}

func hybridToDTO(h result.Hybrid) searchResponseDTO {
	products := make([]productDTO, 0, h.Total())
	for _, m := range h.Matches() {
		p := m.Product()
		products = append(products, productDTO{
			Barcode:      p.Barcode,
			Name:         p.Name,
			Ingredients:  p.Ingredients,
			Allergens:    p.Allergens,
			Dietary:      dietaryToDTO(p.Dietary),
			Score:        m.Score(),
			MatchedField: string(m.Field()),
		})
	}
	return searchResponseDTO{
		Products:       products,
		Strategy:       string(h.Strategy()),
		TotalResults:   h.Total(),
		ResponseTimeMs: h.Elapsed().Milliseconds(),
	}
}
