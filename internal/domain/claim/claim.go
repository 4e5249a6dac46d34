// Package claim models the atomic facts the search engine retrieves and
// ranks: typed statements tied to one level of the
// neighborhood → apartment → room containment hierarchy.
package claim

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain"
)

// Type categorizes what a claim is about. The set is closed: claims arrive
// from an external extraction model and anything outside the enumeration is
// rejected rather than trusted.
type Type string

// Claim type constants.
const (
	TypeLocation      Type = "location"
	TypeFeatures      Type = "features"
	TypeAmenities     Type = "amenities"
	TypeSize          Type = "size"
	TypeCondition     Type = "condition"
	TypePricing       Type = "pricing"
	TypeAccessibility Type = "accessibility"
	TypePolicies      Type = "policies"
	TypeUtilities     Type = "utilities"
	TypeTransport     Type = "transport"
	TypeNeighborhood  Type = "neighborhood"
	TypeRestrictions  Type = "restrictions"
)

// Types lists every valid claim type.
func Types() []Type {
	return []Type{
		TypeLocation, TypeFeatures, TypeAmenities, TypeSize,
		TypeCondition, TypePricing, TypeAccessibility, TypePolicies,
		TypeUtilities, TypeTransport, TypeNeighborhood, TypeRestrictions,
	}
}

// IsValid checks the type against the closed enumeration.
func (t Type) IsValid() bool {
	switch t {
	case TypeLocation, TypeFeatures, TypeAmenities, TypeSize,
		TypeCondition, TypePricing, TypeAccessibility, TypePolicies,
		TypeUtilities, TypeTransport, TypeNeighborhood, TypeRestrictions:
		return true
	}
	return false
}

// Domain is the hierarchy level a claim describes.
type Domain string

// Hierarchy domain constants.
const (
	DomainNeighborhood Domain = "neighborhood"
	DomainApartment    Domain = "apartment"
	DomainRoom         Domain = "room"
)

// Domains lists the hierarchy levels, innermost last.
func Domains() []Domain {
	return []Domain{DomainNeighborhood, DomainApartment, DomainRoom}
}

// IsValid checks the domain against the closed enumeration.
func (d Domain) IsValid() bool {
	return d == DomainNeighborhood || d == DomainApartment || d == DomainRoom
}

// Kind is the provenance of a claim. It scales the claim's query-side weight.
type Kind string

// Claim kind constants.
const (
	KindBase     Kind = "base"
	KindDerived  Kind = "derived"
	KindAnti     Kind = "anti"
	KindVerified Kind = "verified"
)

// IsValid checks the kind against the closed enumeration.
func (k Kind) IsValid() bool {
	return k == KindBase || k == KindDerived || k == KindAnti || k == KindVerified
}

// Multiplier returns the weight multiplier for the kind.
// Derived and anti claims are discounted; externally verified claims boosted.
func (k Kind) Multiplier() float64 {
	switch k {
	case KindDerived, KindAnti:
		return 0.75
	case KindVerified:
		return 1.1
	default:
		return 1.0
	}
}

// DefaultWeight is the query-side importance assigned to a claim when the
// extractor does not provide one.
const DefaultWeight = 0.75

// Claim is an atomic, typed statement about an entity at one hierarchy level.
// Query-side claims carry an embedding supplied by the embedding collaborator;
// index-side claims carry it from ingestion.
type Claim struct {
	Text        string
	ClaimType   Type
	Domain      Domain
	RoomType    string // set iff Domain == DomainRoom
	Kind        Kind
	Weight      float64 // query-side importance in [0,1]
	Negation    bool
	IsSpecific  bool // names a concrete entity, e.g. "Williamsburg"
	ORGroup     int  // claims sharing a non-zero group collapse to one slot
	Embedding   []float32
	Quantifiers []Quantifier
}

// EffectiveWeight is the claim weight scaled by its kind multiplier.
func (c *Claim) EffectiveWeight() float64 {
	return c.Weight * c.Kind.Multiplier()
}

// Validate rejects claims outside the closed taxonomy. The domain/claim-type
// combination itself is a contract on the producer and is not enforced here.
func (c *Claim) Validate() error {
	if c.Text == "" {
		return fmt.Errorf("%w: empty text", domain.ErrInvalidClaim)
	}
	if !c.ClaimType.IsValid() {
		return fmt.Errorf("%w: unknown claim type %q", domain.ErrInvalidClaim, c.ClaimType)
	}
	if !c.Domain.IsValid() {
		return fmt.Errorf("%w: unknown domain %q", domain.ErrInvalidClaim, c.Domain)
	}
	if c.Kind != "" && !c.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidClaim, c.Kind)
	}
	if c.RoomType != "" && c.Domain != DomainRoom {
		return fmt.Errorf("%w: room_type %q on %s-domain claim", domain.ErrInvalidClaim, c.RoomType, c.Domain)
	}
	if c.Weight < 0 || c.Weight > 1 {
		return fmt.Errorf("%w: weight %g outside [0,1]", domain.ErrInvalidClaim, c.Weight)
	}
	for i := range c.Quantifiers {
		if err := c.Quantifiers[i].Validate(); err != nil {
			return fmt.Errorf("quantifier %d: %w", i, err)
		}
	}
	return nil
}

// Normalize fills zero-value defaults: base kind and the default weight.
func (c *Claim) Normalize() {
	if c.Kind == "" {
		c.Kind = KindBase
	}
	if c.Weight == 0 {
		c.Weight = DefaultWeight
	}
}
