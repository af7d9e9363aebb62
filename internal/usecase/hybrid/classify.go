package hybrid

import (
	"strings"
	"unicode"

	"github.com/shelfscan/prodex/internal/domain/barcode"
	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/request"
)

// classification is the routing decision for a single query.
type classification struct {
	exact  bool
	fields []field.Field
}

// classifier routes a query to exact lookup or to similarity field targets
// by lexical heuristics over the query text.
type classifier struct {
	allergenKeywords   []string
	ingredientKeywords []string
}

func newClassifier(allergenKeywords, ingredientKeywords []string) *classifier {
	return &classifier{
		allergenKeywords:   lowerAll(allergenKeywords),
		ingredientKeywords: lowerAll(ingredientKeywords),
	}
}

// classify picks a route. An explicit barcode or key-like text always wins.
// Keyword hits narrow the search to one field; a capitalized phrase targets
// the name field; anything else fans out to all fields.
func (c *classifier) classify(req request.Request) classification {
	if req.Barcode() != "" || barcode.KeyLike(req.Text()) {
		return classification{exact: true}
	}

	text := strings.ToLower(req.Text())
	if containsAny(text, c.allergenKeywords) {
		return classification{fields: []field.Field{field.Allergens}}
	}
	if containsAny(text, c.ingredientKeywords) {
		return classification{fields: []field.Field{field.Ingredients}}
	}
	if isCapitalizedPhrase(req.Text()) {
		return classification{fields: []field.Field{field.Name}}
	}
	return classification{fields: field.All()}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// isCapitalizedPhrase reports whether every word starts with an uppercase
// letter, which is how brand and product names are usually typed.
func isCapitalizedPhrase(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
