package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shelfscan/prodex/internal/domain"
)

func TestLookup_NormalizesBeforeQuery(t *testing.T) {
	svc, mr := newTestService(t)

	var queried string
	mr.findFn = func(_ context.Context, barcode string) (domain.Product, error) {
		queried = barcode
		return testProduct(barcode), nil
	}

	p, err := svc.Lookup(context.Background(), " 036-0002-91452 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried != "036000291452" {
		t.Errorf("repository queried with %q", queried)
	}
	if p.Barcode != "036000291452" {
		t.Errorf("barcode = %q", p.Barcode)
	}
}

func TestLookup_AppendsCheckDigit(t *testing.T) {
	svc, mr := newTestService(t)

	var queried string
	mr.findFn = func(_ context.Context, barcode string) (domain.Product, error) {
		queried = barcode
		return testProduct(barcode), nil
	}

	if _, err := svc.Lookup(context.Background(), "12345678901"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queried != "123456789012" {
		t.Errorf("expected 11-digit input completed to UPC-A, got %q", queried)
	}
}

func TestLookup_InvalidBarcode(t *testing.T) {
	svc, mr := newTestService(t)

	_, err := svc.Lookup(context.Background(), "12ab34")
	if !errors.Is(err, domain.ErrInvalidBarcode) {
		t.Fatalf("expected ErrInvalidBarcode, got %v", err)
	}
	if mr.calls != 0 {
		t.Error("invalid input must not reach the repository")
	}
}

func TestLookup_CacheHitSkipsRepository(t *testing.T) {
	svc, mr := newTestService(t)
	mr.findFn = func(_ context.Context, barcode string) (domain.Product, error) {
		return testProduct(barcode), nil
	}

	if _, err := svc.Lookup(context.Background(), "036000291452"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Lookup(context.Background(), "036000291452"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mr.calls != 1 {
		t.Errorf("expected 1 repository call, got %d", mr.calls)
	}
	if stats := svc.Stats(); stats.Entries != 1 {
		t.Errorf("expected 1 cached entry, got %d", stats.Entries)
	}
}

func TestLookup_StaleEntryRequeriesRepository(t *testing.T) {
	svc, mr := newTestService(t)
	mr.findFn = func(_ context.Context, barcode string) (domain.Product, error) {
		return testProduct(barcode), nil
	}
	now := time.Unix(1000, 0)
	svc.cache.now = func() time.Time { return now }

	if _, err := svc.Lookup(context.Background(), "036000291452"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(6 * time.Minute) // past the 5-minute TTL
	if _, err := svc.Lookup(context.Background(), "036000291452"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mr.calls != 2 {
		t.Errorf("expected stale entry to re-query, got %d repository calls", mr.calls)
	}
}

func TestLookup_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Lookup(context.Background(), "036000291452")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	// misses are never cached
	if stats := svc.Stats(); stats.Entries != 0 {
		t.Errorf("expected empty cache, got %d entries", stats.Entries)
	}
}

func TestLookup_RepositoryFailureDegradesToNotFound(t *testing.T) {
	svc, mr := newTestService(t)
	mr.findFn = func(context.Context, string) (domain.Product, error) {
		return domain.Product{}, errors.New("connection refused")
	}

	_, err := svc.Lookup(context.Background(), "036000291452")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected degraded ErrProductNotFound, got %v", err)
	}
}

func TestClearCache(t *testing.T) {
	svc, mr := newTestService(t)
	mr.findFn = func(_ context.Context, barcode string) (domain.Product, error) {
		return testProduct(barcode), nil
	}

	if _, err := svc.Lookup(context.Background(), "036000291452"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.ClearCache()

	if stats := svc.Stats(); stats.Entries != 0 {
		t.Errorf("expected empty cache after clear, got %d", stats.Entries)
	}
	if _, err := svc.Lookup(context.Background(), "036000291452"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.calls != 2 {
		t.Errorf("expected repository re-query after clear, got %d calls", mr.calls)
	}
}

func TestStats_ReportsTTL(t *testing.T) {
	svc, _ := newTestService(t)
	if stats := svc.Stats(); stats.TTLSeconds != 300 {
		t.Errorf("ttl seconds = %d, want 300", stats.TTLSeconds)
	}
}
