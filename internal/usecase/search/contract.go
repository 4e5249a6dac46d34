package search

import (
	"context"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
)

// ClaimSearcher runs one query claim against its domain index.
type ClaimSearcher interface {
	Search(ctx context.Context, c *claim.Claim, k int) ([]match.Match, error)
}

// ParentResolver resolves containment edges and structured listing fields.
type ParentResolver interface {
	NeighborhoodOf(ctx context.Context, apartmentIDs []string) (map[string]string, error)
	Rents(ctx context.Context, apartmentIDs []string) (map[string]float64, error)
}

// ApartmentLister enumerates the inventory. Needed only when a query carries
// neighborhood claims exclusively and no inner domain seeds candidates.
type ApartmentLister interface {
	ListApartments(ctx context.Context) ([]listing.Apartment, error)
}

// Embedder vectorizes claim text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Grounder expands a specific location claim into verified containment
// claims. Optional collaborator; queries run unexpanded without one.
type Grounder interface {
	Expand(ctx context.Context, c claim.Claim) ([]claim.Claim, error)
}
