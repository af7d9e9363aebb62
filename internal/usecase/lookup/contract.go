package lookup

import (
	"context"

	"github.com/shelfscan/prodex/internal/domain"
)

// Repository defines the storage contract for exact barcode lookups.
type Repository interface {
	FindByBarcode(ctx context.Context, barcode string) (domain.Product, error)
}
