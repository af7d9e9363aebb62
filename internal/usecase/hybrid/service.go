package hybrid

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shelfscan/prodex/internal/domain/search/field"
	"github.com/shelfscan/prodex/internal/domain/search/request"
	"github.com/shelfscan/prodex/internal/domain/search/result"
	"github.com/shelfscan/prodex/internal/domain/search/strategy"
	"github.com/shelfscan/prodex/internal/metrics"
	"github.com/shelfscan/prodex/internal/usecase/lookup"
)

// Config tunes query classification and result merging.
type Config struct {
	AllergenKeywords   []string
	IngredientKeywords []string
	Weights            Weights
}

// Options controls multi-modal orchestration. The zero value deduplicates
// and applies the default result limit.
type Options struct {
	MaxResults   int
	DisableDedup bool
}

// Service is the orchestrator: it classifies each query, dispatches to
// exact lookup or similarity search, and merges multi-source results.
// Every failure mode degrades to an empty envelope; Search and
// SearchMultiModal never return errors.
type Service struct {
	lookup     Lookuper
	similarity Searcher
	embed      Embedder
	classifier *classifier
	weights    Weights
	logger     *zap.Logger
}

// New creates the orchestrator.
func New(l Lookuper, sim Searcher, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	weights := cfg.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Service{
		lookup:     l,
		similarity: sim,
		embed:      embed,
		classifier: newClassifier(cfg.AllergenKeywords, cfg.IngredientKeywords),
		weights:    weights,
		logger:     logger,
	}
}

// Search resolves a single query to a ranked product list.
func (s *Service) Search(ctx context.Context, req request.Request) result.Hybrid {
	start := time.Now()

	matches, strat := s.route(ctx, req)

	elapsed := time.Since(start)
	s.observe(strat, elapsed)
	return result.NewHybrid(matches, strat, elapsed)
}

// SearchMultiModal runs every sub-query concurrently, concatenates the
// results, sorts by raw score, and deduplicates first-seen-wins unless
// disabled. The envelope always carries the hybrid strategy label.
func (s *Service) SearchMultiModal(
	ctx context.Context, reqs []request.Request, opts Options,
) result.Hybrid {
	start := time.Now()

	if len(reqs) == 0 {
		elapsed := time.Since(start)
		s.observe(strategy.Hybrid, elapsed)
		return result.Empty(strategy.Hybrid, elapsed)
	}

	perQuery := make([][]result.Match, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			perQuery[i], _ = s.route(gctx, req)
			return nil
		})
	}
	_ = g.Wait() // route never returns errors

	var all []result.Match
	for _, matches := range perQuery {
		all = append(all, matches...)
	}

	max := opts.MaxResults
	if max <= 0 {
		max = request.DefaultLimit
	}
	merged := dedupSorted(all, !opts.DisableDedup, max)

	elapsed := time.Since(start)
	s.observe(strategy.Hybrid, elapsed)
	return result.NewHybrid(merged, strategy.Hybrid, elapsed)
}

// CacheStats reports the exact-lookup cache state.
func (s *Service) CacheStats() lookup.CacheStats {
	return s.lookup.Stats()
}

// ClearCache drops all cached exact lookups.
func (s *Service) ClearCache() {
	s.lookup.ClearCache()
}

// route classifies one query and executes the chosen mechanism.
// All component failures surface here as empty match sets.
func (s *Service) route(ctx context.Context, req request.Request) ([]result.Match, strategy.Strategy) {
	if req.IsEmpty() {
		return nil, strategy.Similarity
	}

	cls := s.classifier.classify(req)
	if cls.exact {
		return s.searchExact(ctx, req), strategy.Exact
	}
	return s.searchSimilarity(ctx, req, cls.fields), strategy.Similarity
}

func (s *Service) searchExact(ctx context.Context, req request.Request) []result.Match {
	key := req.Barcode()
	if key == "" {
		key = req.Text()
	}

	p, err := s.lookup.Lookup(ctx, key)
	if err != nil {
		return nil
	}
	return []result.Match{result.ExactMatch(p)}
}

func (s *Service) searchSimilarity(
	ctx context.Context, req request.Request, fields []field.Field,
) []result.Match {
	embResult, err := s.embed.Embed(ctx, preprocessQuery(req.Text()))
	if err != nil || len(embResult.Embedding) == 0 {
		if err != nil {
			s.logger.Warn("Query embedding failed", zap.Error(err))
		}
		return nil
	}
	vector := embResult.Embedding

	if len(fields) == 1 {
		return s.similarity.SearchByField(ctx, fields[0], vector, req.Filters())
	}

	// Ambiguous query: fan out to all fields and merge weighted.
	byField := make(map[field.Field][]result.Match, len(fields))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range fields {
		g.Go(func() error {
			matches := s.similarity.SearchByField(gctx, f, vector, req.Filters())
			mu.Lock()
			byField[f] = matches
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return mergeWeighted(byField, s.weights, req.Filters().Limit())
}

func (s *Service) observe(strat strategy.Strategy, elapsed time.Duration) {
	metrics.SearchRequestsTotal.WithLabelValues(string(strat)).Inc()
	metrics.SearchDuration.WithLabelValues(string(strat)).Observe(elapsed.Seconds())
}

// preprocessQuery normalizes free text the same way stored field text is
// normalized before embedding, so query and document vectors line up.
func preprocessQuery(text string) string {
	processed := strings.ToLower(strings.TrimSpace(text))
	processed = strings.TrimSpace(strings.ReplaceAll(processed, "ingredients:", ""))
	processed = strings.TrimSpace(strings.ReplaceAll(processed, "contains:", ""))
	return processed
}
