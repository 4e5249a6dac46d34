package chi

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
	"github.com/kailas-cloud/aptdex/internal/domain/search/request"
	"github.com/kailas-cloud/aptdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/aptdex/internal/usecase/health"
)

// mockSearcher implements Searcher for tests.
type mockSearcher struct {
	searchFn  func(ctx context.Context, req *request.Request) (result.Response, error)
	explainFn func(ctx context.Context, id string, req *request.Request) (result.Ranked, []claim.Domain, error)
}

func (m *mockSearcher) Search(ctx context.Context, req *request.Request) (result.Response, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return result.Response{}, nil
}

func (m *mockSearcher) Explain(ctx context.Context, id string, req *request.Request) (result.Ranked, []claim.Domain, error) {
	if m.explainFn != nil {
		return m.explainFn(ctx, id, req)
	}
	return result.Ranked{}, nil, nil
}

// mockIngester implements Ingester for tests.
type mockIngester struct {
	indexApartmentFn    func(ctx context.Context, apt *listing.Apartment) error
	indexNeighborhoodFn func(ctx context.Context, n *listing.Neighborhood) error
	deleteApartmentFn   func(ctx context.Context, id string) error
}

func (m *mockIngester) IndexApartment(ctx context.Context, apt *listing.Apartment) error {
	if m.indexApartmentFn != nil {
		return m.indexApartmentFn(ctx, apt)
	}
	return nil
}

func (m *mockIngester) IndexNeighborhood(ctx context.Context, n *listing.Neighborhood) error {
	if m.indexNeighborhoodFn != nil {
		return m.indexNeighborhoodFn(ctx, n)
	}
	return nil
}

func (m *mockIngester) DeleteApartment(ctx context.Context, id string) error {
	if m.deleteApartmentFn != nil {
		return m.deleteApartmentFn(ctx, id)
	}
	return nil
}

// mockListingReader implements ListingReader for tests.
type mockListingReader struct {
	getApartmentFn    func(ctx context.Context, id string) (listing.Apartment, error)
	listApartmentsFn  func(ctx context.Context) ([]listing.Apartment, error)
	getNeighborhoodFn func(ctx context.Context, id string) (listing.Neighborhood, error)
}

func (m *mockListingReader) GetApartment(ctx context.Context, id string) (listing.Apartment, error) {
	if m.getApartmentFn != nil {
		return m.getApartmentFn(ctx, id)
	}
	return listing.Apartment{}, domain.ErrNotFound
}

func (m *mockListingReader) ListApartments(ctx context.Context) ([]listing.Apartment, error) {
	if m.listApartmentsFn != nil {
		return m.listApartmentsFn(ctx)
	}
	return nil, nil
}

func (m *mockListingReader) GetNeighborhood(ctx context.Context, id string) (listing.Neighborhood, error) {
	if m.getNeighborhoodFn != nil {
		return m.getNeighborhoodFn(ctx, id)
	}
	return listing.Neighborhood{}, domain.ErrNotFound
}

// mockExtractor implements Extractor for tests.
type mockExtractor struct {
	extractFn func(ctx context.Context, query string) ([]claim.Claim, error)
	calls     int
}

func (m *mockExtractor) Extract(ctx context.Context, query string) ([]claim.Claim, error) {
	m.calls++
	if m.extractFn != nil {
		return m.extractFn(ctx, query)
	}
	return nil, nil
}

// mockHealth implements HealthChecker for tests.
type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	return m.report
}

type serverMocks struct {
	search    *mockSearcher
	ingest    *mockIngester
	listings  *mockListingReader
	extractor *mockExtractor
	health    *mockHealth
}

func newTestServer(t *testing.T) (*Server, *serverMocks) {
	t.Helper()
	m := &serverMocks{
		search:    &mockSearcher{},
		ingest:    &mockIngester{},
		listings:  &mockListingReader{},
		extractor: &mockExtractor{},
		health:    &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK}}},
	}
	srv := NewServer(m.search, m.ingest, m.listings, m.extractor, m.health, zap.NewNop())
	return srv, m
}

func rankedFixture(id string, score float64) result.Ranked {
	return result.New(id, score, 2, 1.0, 1.0,
		map[claim.Domain]float64{claim.DomainApartment: score}, nil)
}
