package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/domain"
	"github.com/shelfscan/prodex/internal/domain/barcode"
	"github.com/shelfscan/prodex/internal/metrics"
)

// Service resolves barcodes to products through a read-through TTL cache.
type Service struct {
	repo      Repository
	cache     *Cache
	slowQuery time.Duration
	logger    *zap.Logger
}

// New creates a lookup service. slowQuery is the repository round-trip
// threshold above which the lookup is logged and counted as slow.
func New(repo Repository, cacheTTL, slowQuery time.Duration, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     NewCache(cacheTTL),
		slowQuery: slowQuery,
		logger:    logger,
	}
}

// Lookup normalizes a raw barcode and resolves it to a product.
// Cache hits skip the repository entirely. Any repository failure
// degrades to domain.ErrProductNotFound after logging.
func (s *Service) Lookup(ctx context.Context, raw string) (domain.Product, error) {
	normalized, ok := barcode.Normalize(raw)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %q", domain.ErrInvalidBarcode, raw)
	}

	p, outcome := s.cache.Get(normalized)
	metrics.LookupCacheTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == Hit {
		return p, nil
	}

	start := time.Now()
	p, err := s.repo.FindByBarcode(ctx, normalized)
	elapsed := time.Since(start)

	if elapsed > s.slowQuery {
		metrics.LookupSlowTotal.Inc()
		s.logger.Warn("Slow barcode lookup",
			zap.String("barcode", normalized),
			zap.Duration("elapsed", elapsed),
		)
	}

	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Warn("Barcode lookup failed",
				zap.String("barcode", normalized),
				zap.Error(err),
			)
		}
		return domain.Product{}, domain.ErrProductNotFound
	}

	s.cache.Set(normalized, p)
	return p, nil
}

// CacheStats reports the live cache entry count and configured TTL.
type CacheStats struct {
	Entries    int
	TTLSeconds int
}

// Stats returns the current cache statistics.
func (s *Service) Stats() CacheStats {
	return CacheStats{
		Entries:    s.cache.Len(),
		TTLSeconds: int(s.cache.TTL().Seconds()),
	}
}

// ClearCache drops all cached lookups.
func (s *Service) ClearCache() {
	s.cache.Clear()
}
