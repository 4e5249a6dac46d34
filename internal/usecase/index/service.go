// Package index handles ingestion: validating listings, vectorizing their
// claims, and replacing the stored claim documents and metadata atomically
// enough for the search side (old claims are deleted before the new set is
// written).
package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/kailas-cloud/aptdex/internal/domain/claim"
	"github.com/kailas-cloud/aptdex/internal/domain/listing"
)

// DefaultWorkers is the embedding pool size when none is configured.
const DefaultWorkers = 8

// Service handles listing ingestion.
type Service struct {
	claims   ClaimIndexer
	listings ListingStore
	embed    Embedder
	pool     *ants.Pool
}

// New creates an ingestion service with a worker pool for claim embedding.
func New(claims ClaimIndexer, listings ListingStore, embed Embedder, workers int) (*Service, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create embed pool: %w", err)
	}
	return &Service{claims: claims, listings: listings, embed: embed, pool: pool}, nil
}

// Close releases the embedding worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// IndexApartment validates, vectorizes, and stores an apartment with its
// rooms. Re-indexing replaces every previously stored claim of the apartment
// and of its rooms, including rooms that no longer exist.
func (s *Service) IndexApartment(ctx context.Context, apt *listing.Apartment) error {
	if err := apt.Validate(); err != nil {
		return err
	}

	groups := make([][]claim.Claim, 0, len(apt.Rooms)+1)
	groups = append(groups, apt.Claims)
	for i := range apt.Rooms {
		groups = append(groups, apt.Rooms[i].Claims)
	}
	if err := s.embedClaims(ctx, groups); err != nil {
		return err
	}

	if err := s.claims.DeleteClaims(ctx, claim.DomainApartment, apt.ID); err != nil {
		return err
	}
	if err := s.claims.DeleteRoomClaims(ctx, apt.ID); err != nil {
		return err
	}

	if err := s.claims.IndexClaims(ctx, apt.ID, apt.NeighborhoodID, apt.Claims); err != nil {
		return err
	}
	for i := range apt.Rooms {
		r := &apt.Rooms[i]
		entityID := listing.RoomEntityID(apt.ID, r.RoomType)
		if err := s.claims.IndexClaims(ctx, entityID, apt.ID, r.Claims); err != nil {
			return err
		}
	}

	return s.listings.SaveApartment(ctx, apt)
}

// IndexNeighborhood validates, vectorizes, and stores a neighborhood.
func (s *Service) IndexNeighborhood(ctx context.Context, n *listing.Neighborhood) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.embedClaims(ctx, [][]claim.Claim{n.Claims}); err != nil {
		return err
	}

	if err := s.claims.DeleteClaims(ctx, claim.DomainNeighborhood, n.ID); err != nil {
		return err
	}
	if err := s.claims.IndexClaims(ctx, n.ID, "", n.Claims); err != nil {
		return err
	}

	return s.listings.SaveNeighborhood(ctx, n)
}

// DeleteApartment removes the apartment metadata and every claim document of
// the apartment and its rooms.
func (s *Service) DeleteApartment(ctx context.Context, id string) error {
	if err := s.listings.DeleteApartment(ctx, id); err != nil {
		return err
	}
	if err := s.claims.DeleteClaims(ctx, claim.DomainApartment, id); err != nil {
		return err
	}
	return s.claims.DeleteRoomClaims(ctx, id)
}

// embedClaims vectorizes every claim still missing an embedding, fanned out
// over the worker pool. The first embedding error wins; remaining tasks still
// drain before it is returned.
func (s *Service) embedClaims(ctx context.Context, groups [][]claim.Claim) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, claims := range groups {
		for i := range claims {
			c := &claims[i]
			if len(c.Embedding) > 0 {
				continue
			}

			wg.Add(1)
			err := s.pool.Submit(func() {
				defer wg.Done()
				res, err := s.embed.Embed(ctx, c.Text)
				if err != nil {
					setErr(fmt.Errorf("embed claim %q: %w", c.Text, err))
					return
				}
				c.Embedding = res.Embedding
			})
			if err != nil {
				wg.Done()
				setErr(fmt.Errorf("submit embed task: %w", err))
			}
		}
	}

	wg.Wait()
	return firstErr
}
