package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidClaim signals a claim the engine cannot dispatch (unknown
	// domain, unknown claim type, malformed quantifier, bad weight).
	ErrInvalidClaim = errors.New("invalid claim")
	// ErrInvalidWeights signals domain weights that do not sum to 1.0.
	ErrInvalidWeights = errors.New("invalid domain weights")
	// ErrBackendUnavailable signals that the vector backend was unreachable
	// for every domain carrying query claims.
	ErrBackendUnavailable = errors.New("vector backend unavailable")
	// ErrVectorDimMismatch signals an embedding of the wrong dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrExtractionProviderError signals a claim extraction provider failure.
	ErrExtractionProviderError = errors.New("extraction provider error")
)
