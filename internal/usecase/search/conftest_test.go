package search

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
	"github.com/kailas-cloud/aptdex/internal/domain/search/match"
)

// mockClaimSearcher implements ClaimSearcher for tests.
type mockClaimSearcher struct {
	searchFn func(ctx context.Context, c *claim.Claim, k int) ([]match.Match, error)
}

func (m *mockClaimSearcher) Search(ctx context.Context, c *claim.Claim, k int) ([]match.Match, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, c, k)
	}
	return nil, nil
}

// mockParents implements ParentResolver for tests.
type mockParents struct {
	neighborhoodOfFn func(ctx context.Context, ids []string) (map[string]string, error)
	rentsFn          func(ctx context.Context, ids []string) (map[string]float64, error)
}

func (m *mockParents) NeighborhoodOf(ctx context.Context, ids []string) (map[string]string, error) {
	if m.neighborhoodOfFn != nil {
		return m.neighborhoodOfFn(ctx, ids)
	}
	return map[string]string{}, nil
}

func (m *mockParents) Rents(ctx context.Context, ids []string) (map[string]float64, error) {
	if m.rentsFn != nil {
		return m.rentsFn(ctx, ids)
	}
	return map[string]float64{}, nil
}

// mockLister implements ApartmentLister for tests.
type mockLister struct {
	listFn func(ctx context.Context) ([]listing.Apartment, error)
}

func (m *mockLister) ListApartments(ctx context.Context) ([]listing.Apartment, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3, 0.4}}, nil
}

// mockGrounder implements Grounder for tests.
type mockGrounder struct {
	expandFn func(ctx context.Context, c claim.Claim) ([]claim.Claim, error)
	calls    int
}

func (m *mockGrounder) Expand(ctx context.Context, c claim.Claim) ([]claim.Claim, error) {
	m.calls++
	if m.expandFn != nil {
		return m.expandFn(ctx, c)
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *mockClaimSearcher, *mockParents, *mockLister) {
	t.Helper()
	cs := &mockClaimSearcher{}
	mp := &mockParents{}
	ml := &mockLister{}
	svc := New(cs, mp, ml, &mockEmbedder{}, Config{
		RoomK:         100,
		ApartmentK:    200,
		NeighborhoodK: 50,
		ClaimTimeout:  time.Second,
	})
	return svc, cs, mp, ml
}

func roomClaim(text, roomType string, w float64) claim.Claim {
	return claim.Claim{
		Text: text, ClaimType: claim.TypeFeatures, Domain: claim.DomainRoom,
		RoomType: roomType, Kind: claim.KindBase, Weight: w,
	}
}

func aptClaim(text string, w float64) claim.Claim {
	return claim.Claim{
		Text: text, ClaimType: claim.TypeFeatures, Domain: claim.DomainApartment,
		Kind: claim.KindBase, Weight: w,
	}
}

func nbhClaim(text string, w float64) claim.Claim {
	return claim.Claim{
		Text: text, ClaimType: claim.TypeNeighborhood, Domain: claim.DomainNeighborhood,
		Kind: claim.KindBase, Weight: w,
	}
}

func locationClaim(text string, w float64) claim.Claim {
	return claim.Claim{
		Text: text, ClaimType: claim.TypeLocation, Domain: claim.DomainApartment,
		Kind: claim.KindBase, Weight: w, IsSpecific: true,
	}
}

// roomMatch produces a room-domain hit that climbs to the given apartment.
func roomMatch(q claim.Claim, apt string, sim float64) match.Match {
	return match.Match{
		EntityID: apt + "/" + q.RoomType, ParentID: apt, Query: q,
		MatchedText: "indexed: " + q.Text, Similarity: sim,
		ClaimType: q.ClaimType, Kind: claim.KindBase,
	}
}

func aptMatch(q claim.Claim, apt, nbh string, sim float64) match.Match {
	return match.Match{
		EntityID: apt, ParentID: nbh, Query: q,
		MatchedText: "indexed: " + q.Text, Similarity: sim,
		ClaimType: q.ClaimType, Kind: claim.KindBase,
	}
}

func nbhMatch(q claim.Claim, nbh string, sim float64) match.Match {
	return match.Match{
		EntityID: nbh, Query: q,
		MatchedText: "indexed: " + q.Text, Similarity: sim,
		ClaimType: q.ClaimType, Kind: claim.KindBase,
	}
}
