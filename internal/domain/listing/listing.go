// Package listing models the indexed inventory: neighborhoods and the
// apartments they contain, each carrying the claims extracted from its
// description at ingestion time.
package listing

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain"
	"github.com/kailas-cloud/aptdex/internal/domain/claim"
)

// RoomEntityID derives the entity id of a room from its apartment.
// Rooms are not standalone listings; one room type appears at most once
// per apartment.
func RoomEntityID(apartmentID, roomType string) string {
	return apartmentID + "/" + roomType
}

// Room groups the room-domain claims of one room within an apartment.
type Room struct {
	RoomType string
	Claims   []claim.Claim
}

// Apartment is one rentable listing inside a neighborhood.
type Apartment struct {
	ID             string
	NeighborhoodID string
	Title          string
	Address        string
	Description    string
	RentPrice      float64
	Claims         []claim.Claim // apartment-domain claims
	Rooms          []Room
}

// Validate checks identity, containment and claim domains.
func (a *Apartment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: apartment id is required", domain.ErrInvalidClaim)
	}
	if a.NeighborhoodID == "" {
		return fmt.Errorf("%w: apartment %s without neighborhood", domain.ErrInvalidClaim, a.ID)
	}
	if a.RentPrice < 0 {
		return fmt.Errorf("%w: negative rent price", domain.ErrInvalidClaim)
	}
	for i := range a.Claims {
		c := &a.Claims[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("apartment claim %d: %w", i, err)
		}
		if c.Domain != claim.DomainApartment {
			return fmt.Errorf("%w: apartment claim %d has domain %q", domain.ErrInvalidClaim, i, c.Domain)
		}
	}
	seen := make(map[string]bool, len(a.Rooms))
	for i := range a.Rooms {
		r := &a.Rooms[i]
		if r.RoomType == "" {
			return fmt.Errorf("%w: room %d without room_type", domain.ErrInvalidClaim, i)
		}
		if seen[r.RoomType] {
			return fmt.Errorf("%w: duplicate room_type %q", domain.ErrInvalidClaim, r.RoomType)
		}
		seen[r.RoomType] = true
		for j := range r.Claims {
			c := &r.Claims[j]
			if err := c.Validate(); err != nil {
				return fmt.Errorf("room %s claim %d: %w", r.RoomType, j, err)
			}
			if c.Domain != claim.DomainRoom {
				return fmt.Errorf("%w: room %s claim %d has domain %q",
					domain.ErrInvalidClaim, r.RoomType, j, c.Domain)
			}
			if c.RoomType != r.RoomType {
				return fmt.Errorf("%w: room %s claim %d tagged %q",
					domain.ErrInvalidClaim, r.RoomType, j, c.RoomType)
			}
		}
	}
	return nil
}

// Neighborhood is the outermost hierarchy level.
type Neighborhood struct {
	ID          string
	Name        string
	City        string
	Description string
	Claims      []claim.Claim // neighborhood-domain claims
}

// Validate checks identity and claim domains.
func (n *Neighborhood) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: neighborhood id is required", domain.ErrInvalidClaim)
	}
	for i := range n.Claims {
		c := &n.Claims[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("neighborhood claim %d: %w", i, err)
		}
		if c.Domain != claim.DomainNeighborhood {
			return fmt.Errorf("%w: neighborhood claim %d has domain %q", domain.ErrInvalidClaim, i, c.Domain)
		}
	}
	return nil
}
