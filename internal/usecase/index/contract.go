package index

import (
	"context"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
)

// ClaimIndexer writes and removes claim documents in the per-domain indexes.
type ClaimIndexer interface {
	IndexClaims(ctx context.Context, entityID, parentID string, claims []claim.Claim) error
	DeleteClaims(ctx context.Context, dom claim.Domain, entityID string) error
	DeleteRoomClaims(ctx context.Context, apartmentID string) error
}

// ListingStore persists listing metadata alongside the claim documents.
type ListingStore interface {
	SaveApartment(ctx context.Context, a *listing.Apartment) error
	GetApartment(ctx context.Context, id string) (listing.Apartment, error)
	ListApartments(ctx context.Context) ([]listing.Apartment, error)
	DeleteApartment(ctx context.Context, id string) error
	SaveNeighborhood(ctx context.Context, n *listing.Neighborhood) error
	GetNeighborhood(ctx context.Context, id string) (listing.Neighborhood, error)
}

// Embedder vectorizes claim text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
