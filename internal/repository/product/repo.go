package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shelfscan/prodex/internal/db"
	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/filter"
	"github.com/shelfscan/prodex/internal/domain/search/result"
)

const (
	keyPrefix = domain.KeyPrefix + "products:"
	indexName = keyPrefix + "idx"
)

// store is the consumer interface for product persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig tunes the vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo persists products as JSON documents with three vector attributes.
type Repo struct {
	store store
	dims  int
	hnsw  HNSWConfig
}

// New creates a product repository for vectors of the given dimensionality.
func New(s store, dims int) *Repo {
	return &Repo{store: s, dims: dims}
}

// WithHNSW overrides the HNSW index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// vectorAttr maps an embedded field to its index attribute name.
func vectorAttr(f field.Field) string {
	return string(f) + "_vec"
}

func productKey(barcode string) string {
	return keyPrefix + barcode
}

// FindByBarcode retrieves a product by its normalized barcode.
// Returns domain.ErrProductNotFound when the key is absent.
func (r *Repo) FindByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	data, err := r.store.JSONGet(ctx, productKey(barcode))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product %s: %w", barcode, err)
	}

	var doc productDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %s: %w", barcode, err)
	}
	return doc.toDomain(), nil
}

// SearchByField performs a KNN search over one embedded field, returning
// up to k matches sorted by descending similarity. Filters are pushed down
// to the index as TAG pre-filters.
func (r *Repo) SearchByField(
	ctx context.Context, f field.Field, vector []float32,
	filters filter.Expression, k int,
) ([]result.Match, error) {
	if !f.IsValid() {
		return nil, fmt.Errorf("unsupported search field %q", f)
	}
	if len(vector) != r.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(vector), r.dims)
	}

	q := &db.KNNQuery{
		IndexName:    indexName,
		VectorField:  vectorAttr(f),
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"$"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", f, err)
	}

	return parseMatches(sr, f)
}

// Put upserts a product document with its precomputed embeddings.
// Used by the ingestion tooling; the search core only reads.
func (r *Repo) Put(ctx context.Context, p domain.Product, emb Embeddings) error {
	if len(emb.Ingredients) != r.dims || len(emb.Name) != r.dims || len(emb.Allergens) != r.dims {
		return domain.ErrVectorDimMismatch
	}

	doc := fromDomain(p, emb)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode product %s: %w", p.Barcode, err)
	}

	if err := r.store.JSONSet(ctx, productKey(p.Barcode), "$", data); err != nil {
		return fmt.Errorf("put product %s: %w", p.Barcode, err)
	}
	return nil
}

// Delete removes a product document by its normalized barcode.
// Like Put, this is the ingestion tooling boundary.
func (r *Repo) Delete(ctx context.Context, barcode string) error {
	if err := r.store.Del(ctx, productKey(barcode)); err != nil {
		return fmt.Errorf("delete product %s: %w", barcode, err)
	}
	return nil
}

// EnsureIndex creates the product FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := r.indexDefinition()
	if err != nil {
		return err
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (r *Repo) indexDefinition() (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName).
		OnJSON().
		Prefix(keyPrefix).
		Tag("$.barcode", "barcode").
		Tag("$.dietary.vegan", "vegan").
		Tag("$.dietary.vegetarian", "vegetarian").
		Tag("$.dietary.gluten_free", "gluten_free").
		Tag("$.dietary.kosher", "kosher").
		Tag("$.dietary.halal", "halal").
		Tag("$.allergens[*]", "allergens")

	for _, f := range field.All() {
		b = b.VectorHNSW(
			"$.embeddings."+string(f), vectorAttr(f),
			r.dims, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct,
		)
	}

	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build index definition: %w", err)
	}
	return def, nil
}

// parseMatches converts db search entries into similarity matches.
func parseMatches(sr *db.SearchResult, f field.Field) ([]result.Match, error) {
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	matches := make([]result.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		payload, ok := entry.Fields["$"]
		if !ok {
			continue
		}
		var doc productDoc
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("decode search entry %s: %w", entry.Key, err)
		}
		matches = append(matches, result.NewMatch(doc.toDomain(), entry.Score, f))
	}
	return matches, nil
}
