package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/request"
	"github.com/shelfscan/prodex/internal/domain/search/result"
	healthuc "github.com/shelfscan/prodex/internal/usecase/health"
	hybriduc "github.com/shelfscan/prodex/internal/usecase/hybrid"
	"github.com/shelfscan/prodex/internal/usecase/lookup"
)

// --- Stubs wired into real usecase services ---

type stubLookup struct {
	product domain.Product
	err     error
	stats   lookup.CacheStats
	cleared bool
}

func (s *stubLookup) Lookup(_ context.Context, _ string) (domain.Product, error) {
	if s.err != nil {
		return domain.Product{}, s.err
	}
	return s.product, nil
}
func (s *stubLookup) Stats() lookup.CacheStats { return s.stats }
func (s *stubLookup) ClearCache()              { s.cleared = true }

type stubSearcher struct {
	matches     []result.Match
	lastFilters request.Filters
}

func (s *stubSearcher) SearchByField(
	_ context.Context, f field.Field, _ []float32, filters request.Filters,
) []result.Match {
	s.lastFilters = filters
	if f != field.Ingredients {
		return nil
	}
	return s.matches
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

type testEnv struct {
	router *gochi.Mux
	lookup *stubLookup
	search *stubSearcher
	dbPing *stubPinger
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, SearchDefaults{})
}

func newTestEnvWith(t *testing.T, defaults SearchDefaults) *testEnv {
	t.Helper()

	sl := &stubLookup{err: domain.ErrProductNotFound}
	ss := &stubSearcher{}
	dp := &stubPinger{}

	searchSvc := hybriduc.New(sl, ss, stubEmbedder{}, hybriduc.Config{
		AllergenKeywords:   []string{"nuts", "gluten"},
		IngredientKeywords: []string{"contains", "organic"},
	}, zap.NewNop())
	healthSvc := healthuc.New(dp, nil)

	server := NewServer(searchSvc, healthSvc, defaults, zap.NewNop())
	r := gochi.NewRouter()
	server.Register(r)

	return &testEnv{router: r, lookup: sl, search: ss, dbPing: dp}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// --- Tests ---

func TestHandleSearch_ExactHit(t *testing.T) {
	env := newTestEnv(t)
	env.lookup.err = nil
	env.lookup.product = domain.Product{Barcode: "123456789012", Name: "Almond Milk"}

	rr := env.do(t, "POST", "/v1/search", queryDTO{Barcode: "123456789012"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp searchResponseDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Strategy != "exact" {
		t.Errorf("strategy = %q", resp.Strategy)
	}
	if resp.TotalResults != 1 || resp.Products[0].Barcode != "123456789012" {
		t.Errorf("unexpected products: %+v", resp.Products)
	}
	if resp.Products[0].Score != 1.0 {
		t.Errorf("exact score = %g", resp.Products[0].Score)
	}
	if resp.ResponseTimeMs < 0 {
		t.Errorf("response_time_ms = %d", resp.ResponseTimeMs)
	}
}

func TestHandleSearch_SimilarityMiss(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/v1/search", queryDTO{Text: "contains almonds"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp searchResponseDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Strategy != "similarity" {
		t.Errorf("strategy = %q", resp.Strategy)
	}
	if resp.TotalResults != 0 {
		t.Errorf("total = %d", resp.TotalResults)
	}
	if resp.Products == nil {
		t.Error("products must serialize as an empty array, not null")
	}
}

func TestHandleSearch_ConfiguredDefaultFilters(t *testing.T) {
	env := newTestEnvWith(t, SearchDefaults{Limit: 2, MinScore: 0.8})

	rr := env.do(t, "POST", "/v1/search", queryDTO{Text: "contains almonds"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := env.search.lastFilters.Limit(); got != 2 {
		t.Errorf("limit = %d, want configured default 2", got)
	}
	if got := env.search.lastFilters.MinScore(); got != 0.8 {
		t.Errorf("min score = %g, want configured default 0.8", got)
	}
}

func TestHandleSearch_RequestFiltersOverrideDefaults(t *testing.T) {
	env := newTestEnvWith(t, SearchDefaults{Limit: 2, MinScore: 0.8})

	rr := env.do(t, "POST", "/v1/search", queryDTO{
		Text:    "contains almonds",
		Filters: &filtersDTO{Limit: 5, MinScore: 0.1},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := env.search.lastFilters.Limit(); got != 5 {
		t.Errorf("limit = %d, want 5", got)
	}
	if got := env.search.lastFilters.MinScore(); got != 0.1 {
		t.Errorf("min score = %g, want 0.1", got)
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/v1/search", bytes.NewBufferString("{bad json"))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHandleSearch_InvalidFilters(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/v1/search", queryDTO{
		Text:    "almond milk",
		Filters: &filtersDTO{MinScore: 2.0},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("code = %q", errResp.Code)
	}
}

func TestHandleSearchMultiModal(t *testing.T) {
	env := newTestEnv(t)
	env.lookup.err = nil
	env.lookup.product = domain.Product{Barcode: "111111111111", Name: "Almond Milk"}
	env.search.matches = []result.Match{
		result.NewMatch(domain.Product{Barcode: "111111111111"}, 0.88, field.Ingredients),
		result.NewMatch(domain.Product{Barcode: "222222222222"}, 0.75, field.Ingredients),
	}

	rr := env.do(t, "POST", "/v1/search/multimodal", multiModalRequestDTO{
		Queries: []queryDTO{
			{Barcode: "111111111111"},
			{Text: "contains almonds"},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp searchResponseDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Strategy != "hybrid" {
		t.Errorf("strategy = %q", resp.Strategy)
	}
	if resp.TotalResults != 2 {
		t.Fatalf("total = %d, want deduplicated 2", resp.TotalResults)
	}
}

func TestHandleSearchMultiModal_NoQueries(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/v1/search/multimodal", multiModalRequestDTO{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHandleSearchMultiModal_TooManyQueries(t *testing.T) {
	env := newTestEnv(t)

	queries := make([]queryDTO, maxMultiModalQueries+1)
	for i := range queries {
		queries[i] = queryDTO{Text: "x"}
	}
	rr := env.do(t, "POST", "/v1/search/multimodal", multiModalRequestDTO{Queries: queries})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestHandleCacheStats(t *testing.T) {
	env := newTestEnv(t)
	env.lookup.stats = lookup.CacheStats{Entries: 3, TTLSeconds: 300}

	rr := env.do(t, "GET", "/v1/cache/stats", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp cacheStatsDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Size != 3 || resp.TTLSeconds != 300 {
		t.Errorf("stats = %+v", resp)
	}
}

func TestHandleClearCache(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "DELETE", "/v1/cache", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if !env.lookup.cleared {
		t.Error("expected cache clear call")
	}
}

func TestHandleHealth_OK(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp healthResponseDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestHandleHealth_DBDown(t *testing.T) {
	env := newTestEnv(t)
	env.dbPing.err = errors.New("conn refused")

	rr := env.do(t, "GET", "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}
