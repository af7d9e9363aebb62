package health

import "context"

// DBPinger checks product store availability. A failing ping marks the
// whole service unhealthy since both search paths depend on the store.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability. A failure
// only degrades similarity search; barcode lookups keep working.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
