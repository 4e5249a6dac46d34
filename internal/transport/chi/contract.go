package chi

import (
	"context"

	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
	"github.com/kailas-cloud/aptdex/internal/domain/search/request"
	"github.com/kailas-cloud/aptdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
)

// Searcher runs claim searches and per-apartment explanations.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Response, error)
	Explain(ctx context.Context, apartmentID string, req *request.Request) (result.Ranked, []claim.Domain, error)
}

// Ingester indexes and removes listings.
type Ingester interface {
	IndexApartment(ctx context.Context, apt *listing.Apartment) error
	IndexNeighborhood(ctx context.Context, n *listing.Neighborhood) error
	DeleteApartment(ctx context.Context, id string) error
}

// ListingReader serves listing metadata reads.
type ListingReader interface {
	GetApartment(ctx context.Context, id string) (listing.Apartment, error)
	ListApartments(ctx context.Context) ([]listing.Apartment, error)
	GetNeighborhood(ctx context.Context, id string) (listing.Neighborhood, error)
}

// Extractor turns a free-text query into structured claims.
type Extractor interface {
	Extract(ctx context.Context, query string) ([]claim.Claim, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
