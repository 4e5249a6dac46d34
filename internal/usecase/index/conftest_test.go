package index

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
)

// mockIndexer implements ClaimIndexer for tests.
type mockIndexer struct {
	indexFn           func(ctx context.Context, entityID, parentID string, claims []claim.Claim) error
	deleteFn          func(ctx context.Context, dom claim.Domain, entityID string) error
	deleteRoomsFn     func(ctx context.Context, apartmentID string) error
	indexCalls        []indexCall
	deleteCalls       []deleteCall
	deleteRoomsCalled []string
}

type indexCall struct {
	entityID string
	parentID string
	claims   []claim.Claim
}

type deleteCall struct {
	dom      claim.Domain
	entityID string
}

func (m *mockIndexer) IndexClaims(ctx context.Context, entityID, parentID string, claims []claim.Claim) error {
	m.indexCalls = append(m.indexCalls, indexCall{entityID, parentID, claims})
	if m.indexFn != nil {
		return m.indexFn(ctx, entityID, parentID, claims)
	}
	return nil
}

func (m *mockIndexer) DeleteClaims(ctx context.Context, dom claim.Domain, entityID string) error {
	m.deleteCalls = append(m.deleteCalls, deleteCall{dom, entityID})
	if m.deleteFn != nil {
		return m.deleteFn(ctx, dom, entityID)
	}
	return nil
}

func (m *mockIndexer) DeleteRoomClaims(ctx context.Context, apartmentID string) error {
	m.deleteRoomsCalled = append(m.deleteRoomsCalled, apartmentID)
	if m.deleteRoomsFn != nil {
		return m.deleteRoomsFn(ctx, apartmentID)
	}
	return nil
}

// mockListings implements ListingStore for tests.
type mockListings struct {
	saveApartmentFn    func(ctx context.Context, a *listing.Apartment) error
	getApartmentFn     func(ctx context.Context, id string) (listing.Apartment, error)
	listFn             func(ctx context.Context) ([]listing.Apartment, error)
	deleteApartmentFn  func(ctx context.Context, id string) error
	saveNeighborhoodFn func(ctx context.Context, n *listing.Neighborhood) error
	getNeighborhoodFn  func(ctx context.Context, id string) (listing.Neighborhood, error)
	savedApartments    []string
	savedNeighborhoods []string
}

func (m *mockListings) SaveApartment(ctx context.Context, a *listing.Apartment) error {
	m.savedApartments = append(m.savedApartments, a.ID)
	if m.saveApartmentFn != nil {
		return m.saveApartmentFn(ctx, a)
	}
	return nil
}

func (m *mockListings) GetApartment(ctx context.Context, id string) (listing.Apartment, error) {
	if m.getApartmentFn != nil {
		return m.getApartmentFn(ctx, id)
	}
	return listing.Apartment{}, domain.ErrNotFound
}

func (m *mockListings) ListApartments(ctx context.Context) ([]listing.Apartment, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockListings) DeleteApartment(ctx context.Context, id string) error {
	if m.deleteApartmentFn != nil {
		return m.deleteApartmentFn(ctx, id)
	}
	return nil
}

func (m *mockListings) SaveNeighborhood(ctx context.Context, n *listing.Neighborhood) error {
	m.savedNeighborhoods = append(m.savedNeighborhoods, n.ID)
	if m.saveNeighborhoodFn != nil {
		return m.saveNeighborhoodFn(ctx, n)
	}
	return nil
}

func (m *mockListings) GetNeighborhood(ctx context.Context, id string) (listing.Neighborhood, error) {
	if m.getNeighborhoodFn != nil {
		return m.getNeighborhoodFn(ctx, id)
	}
	return listing.Neighborhood{}, domain.ErrNotFound
}

// countingEmbedder is safe for the concurrent embed pool.
type countingEmbedder struct {
	mu      sync.Mutex
	calls   int
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *countingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}, nil
}

func (m *countingEmbedder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestService(t *testing.T) (*Service, *mockIndexer, *mockListings, *countingEmbedder) {
	t.Helper()
	mi := &mockIndexer{}
	ml := &mockListings{}
	me := &countingEmbedder{}
	svc, err := New(mi, ml, me, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc, mi, ml, me
}

func validApartment() listing.Apartment {
	return listing.Apartment{
		ID:             "apt_1",
		NeighborhoodID: "nbh_1",
		Title:          "Sunny 2BR in Greenpoint",
		RentPrice:      2400,
		Claims: []claim.Claim{
			{Text: "south-facing windows", ClaimType: claim.TypeFeatures, Domain: claim.DomainApartment, Kind: claim.KindBase, Weight: 0.8},
			{Text: "in-unit laundry", ClaimType: claim.TypeAmenities, Domain: claim.DomainApartment, Kind: claim.KindBase, Weight: 0.6},
		},
		Rooms: []listing.Room{
			{
				RoomType: "kitchen",
				Claims: []claim.Claim{
					{Text: "renovated kitchen", ClaimType: claim.TypeCondition, Domain: claim.DomainRoom, RoomType: "kitchen", Kind: claim.KindBase, Weight: 0.7},
				},
			},
		},
	}
}

func validNeighborhood() listing.Neighborhood {
	return listing.Neighborhood{
		ID:   "nbh_1",
		Name: "Greenpoint",
		City: "Brooklyn",
		Claims: []claim.Claim{
			{Text: "quiet residential streets", ClaimType: claim.TypeNeighborhood, Domain: claim.DomainNeighborhood, Kind: claim.KindBase, Weight: 0.8},
		},
	}
}
