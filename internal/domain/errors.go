package domain

import "errors"

var (
	// ErrProductNotFound signals a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidBarcode signals a barcode that failed normalization.
	ErrInvalidBarcode = errors.New("invalid barcode")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
